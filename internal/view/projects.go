package view

import (
	"context"
	"strings"
	"sync"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/logger"
	"github.com/existflow/pmdesk/internal/model"
)

// ProjectsView is the state for the project list screen. Each project row
// shows a completion percentage; those aggregates come from per-project
// progress fetches that run concurrently after the list itself loads.
type ProjectsView struct {
	viewState

	client *api.Client
	list   *List[model.Project]

	showArchived bool
	textFilter   string
	progress     map[int]model.ProjectProgress
}

// NewProjectsView creates an idle project list view
func NewProjectsView(client *api.Client, pageSize int) *ProjectsView {
	v := &ProjectsView{
		client:   client,
		list:     NewList[model.Project](pageSize),
		progress: make(map[int]model.ProjectProgress),
	}
	v.list.SetSort(ProjectLess(SortByTitle, true))
	v.applyFilter()
	return v
}

// Visible returns the current page of projects
func (v *ProjectsView) Visible() []model.Project {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Visible()
}

// Page returns the current page number
func (v *ProjectsView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Page()
}

// PageCount returns the number of pages
func (v *ProjectsView) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.PageCount()
}

// NextPage advances one page
func (v *ProjectsView) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list.NextPage()
}

// PrevPage goes back one page
func (v *ProjectsView) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list.PrevPage()
}

// Len returns the filtered project count
func (v *ProjectsView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Len()
}

// Progress returns the last fetched completion aggregate for a project.
// ok is false while the fetch is still in flight or after it failed.
func (v *ProjectsView) Progress(projectID int) (model.ProjectProgress, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.progress[projectID]
	return p, ok
}

// Load fetches the project list, then every project's progress aggregate.
// The progress fetches run concurrently; they write to disjoint map slots
// and no ordering between them matters. A failed progress fetch leaves
// that one project without a percentage, it does not fail the view.
func (v *ProjectsView) Load(ctx context.Context) error {
	gen := v.begin(Loading)
	projects, err := v.client.Projects(ctx)
	if err != nil {
		return v.fail(gen, err, "Failed to load projects")
	}
	v.commit(gen, func() {
		v.list.SetItems(projects)
		v.progress = make(map[int]model.ProjectProgress, len(projects))
	})

	var wg sync.WaitGroup
	for _, p := range projects {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			v.fetchProgress(ctx, gen, id)
		}(p.ID)
	}
	wg.Wait()
	return nil
}

func (v *ProjectsView) fetchProgress(ctx context.Context, gen, projectID int) {
	progress, err := v.client.ProjectProgress(ctx, projectID)
	if err != nil {
		logger.Warn("progress fetch failed", logger.F("project", projectID), logger.F("error", err))
		return
	}
	v.commit(gen, func() { v.progress[projectID] = *progress })
}

// RefreshProgress refetches a single project's completion aggregate. Views
// never recompute it locally from the task list.
func (v *ProjectsView) RefreshProgress(ctx context.Context, projectID int) {
	v.fetchProgress(ctx, v.snapshot(), projectID)
}

// ShowArchived toggles whether archived projects are listed
func (v *ProjectsView) ShowArchived(show bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showArchived = show
	v.applyFilter()
}

// FilterText keeps projects whose title contains q, case-insensitively
func (v *ProjectsView) FilterText(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.textFilter = strings.ToLower(q)
	v.applyFilter()
}

func (v *ProjectsView) applyFilter() {
	showArchived, text := v.showArchived, v.textFilter
	v.list.SetFilter(func(p model.Project) bool {
		if !showArchived && p.IsArchived {
			return false
		}
		if text != "" && !strings.Contains(strings.ToLower(p.Title), text) {
			return false
		}
		return true
	})
}

// Create adds a project and refetches the list and every aggregate
func (v *ProjectsView) Create(ctx context.Context, req model.ProjectCreate) error {
	gen := v.begin(Mutating)
	if _, err := v.client.CreateProject(ctx, req); err != nil {
		return v.fail(gen, err, "Failed to create project")
	}
	return v.Load(ctx)
}

// Delete removes a project and refetches the list and every aggregate
func (v *ProjectsView) Delete(ctx context.Context, id int) error {
	gen := v.begin(Mutating)
	if err := v.client.DeleteProject(ctx, id); err != nil {
		return v.fail(gen, err, "Failed to delete project")
	}
	return v.Load(ctx)
}

// Update edits a project and splices the returned record in place.
// Title and description changes cannot move any aggregate, so nothing is
// refetched.
func (v *ProjectsView) Update(ctx context.Context, id int, upd model.ProjectUpdate) error {
	gen := v.begin(Mutating)
	project, err := v.client.UpdateProject(ctx, id, upd)
	if err != nil {
		return v.fail(gen, err, "Failed to update project")
	}
	v.commit(gen, func() {
		v.list.Patch(func(p model.Project) bool { return p.ID == project.ID }, *project)
	})
	return nil
}

// Archive sets or clears a project's archived flag, then refetches: the
// flag usually changes which rows are visible at all.
func (v *ProjectsView) Archive(ctx context.Context, id int, archived bool) error {
	gen := v.begin(Mutating)
	if err := v.client.ArchiveProject(ctx, id, archived); err != nil {
		return v.fail(gen, err, "Failed to archive project")
	}
	return v.Load(ctx)
}
