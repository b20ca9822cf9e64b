package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/view"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"proj"},
	Short:   "List projects",
	RunE:    runProjects,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectArchive,
}

var (
	projectsArchived bool
	projectDesc      string
	archiveUndo      bool
)

func init() {
	projectsCmd.Flags().BoolVarP(&projectsArchived, "archived", "a", false, "Include archived projects")
	projectCreateCmd.Flags().StringVar(&projectDesc, "desc", "", "Project description")
	projectArchiveCmd.Flags().BoolVar(&archiveUndo, "undo", false, "Unarchive instead")

	projectsCmd.AddCommand(projectCreateCmd)
	projectsCmd.AddCommand(projectArchiveCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	v := view.NewProjectsView(e.Client, 1000)
	v.ShowArchived(projectsArchived)
	if err := v.Load(context.Background()); err != nil {
		return fmt.Errorf("%s", v.Err())
	}

	if v.Len() == 0 {
		fmt.Println("No projects")
		return nil
	}
	for _, p := range v.Visible() {
		line := fmt.Sprintf("%4d  %-30s", p.ID, p.Title)
		if progress, ok := v.Progress(p.ID); ok {
			line += fmt.Sprintf("  %3.0f%%  %d/%d tasks",
				progress.CompletionPercent, progress.CompletedTasks, progress.TotalTasks)
		}
		if p.IsArchived {
			line += "  [archived]"
		}
		fmt.Println(line)
	}
	return nil
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	project, err := e.Client.CreateProject(context.Background(), model.ProjectCreate{
		Title:       args[0],
		Description: projectDesc,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created project %d: %s\n", project.ID, project.Title)
	return nil
}

func runProjectArchive(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := e.Client.ArchiveProject(context.Background(), id, !archiveUndo); err != nil {
		return err
	}
	if archiveUndo {
		fmt.Printf("Project %d unarchived\n", id)
	} else {
		fmt.Printf("Project %d archived\n", id)
	}
	return nil
}
