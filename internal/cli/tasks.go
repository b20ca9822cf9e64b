package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/view"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	Long: `List the tasks visible to you. Developers see their assigned tasks;
admins and managers see everything.`,
	RunE: runTasks,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <todo|in_progress|done>",
	Short: "Change a task's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskStatus,
}

var taskLogCmd = &cobra.Command{
	Use:   "log <id> <hours>",
	Short: "Log work against a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskLog,
}

var (
	tasksStatus string
	tasksSort   string
	tasksDesc   bool
	logWorkNote string
)

func init() {
	tasksCmd.Flags().StringVarP(&tasksStatus, "status", "s", "", "Filter by status (todo, in_progress, done)")
	tasksCmd.Flags().StringVar(&tasksSort, "sort", "created_at", "Sort key (title, status, priority, due_date, created_at)")
	tasksCmd.Flags().BoolVar(&tasksDesc, "desc", false, "Sort descending")
	taskLogCmd.Flags().StringVar(&logWorkNote, "note", "", "What the time was spent on")

	tasksCmd.AddCommand(taskStatusCmd)
	tasksCmd.AddCommand(taskLogCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	v := view.NewTasksView(e.Client, 1000)
	v.SortBy(tasksSort, !tasksDesc)
	if tasksStatus != "" {
		v.FilterStatus(tasksStatus)
	}
	if err := v.Load(context.Background()); err != nil {
		return fmt.Errorf("%s", v.Err())
	}

	if v.Len() == 0 {
		fmt.Println("No tasks")
		return nil
	}
	for _, t := range v.All() {
		line := fmt.Sprintf("%4d  %-36s %-12s %s", t.ID, t.Title, t.Status, t.AssigneeName())
		if t.DueDate != nil {
			line += "  due " + t.DueDate.Format("2006-01-02")
		}
		if t.IsOverdue() {
			line += "  OVERDUE"
		}
		fmt.Println(line)
	}
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	status := args[1]
	if status != model.StatusTodo && status != model.StatusInProgress && status != model.StatusDone {
		return fmt.Errorf("invalid status %q", status)
	}

	task, err := e.Client.SetTaskStatus(context.Background(), id, status)
	if err != nil {
		return err
	}
	fmt.Printf("Task %d is now %s\n", task.ID, task.Status)
	return nil
}

func runTaskLog(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	hours, err := strconv.ParseFloat(args[1], 64)
	if err != nil || hours <= 0 {
		return fmt.Errorf("hours must be a positive number")
	}

	entry, err := e.Client.LogWork(context.Background(), id, api.TimeLogCreate{
		Hours:       hours,
		Description: logWorkNote,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Logged %.1fh against task %d\n", entry.Hours, id)
	return nil
}
