package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskLists/internal/client"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"

	"github.com/spf13/cobra"
)

func newTasksCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		newTaskListCommand(e),
		&cobra.Command{
			Use:   "show ID",
			Short: "Show one task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				t, err := e.store.Task(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to get task: %w", err)
				}
				return printTask(e.out, t)
			},
		},
		newTaskAddCommand(e),
		newTaskEditCommand(e),
		newTaskStateCommand(e, "done", "Mark a task as completed", true),
		newTaskStateCommand(e, "undo", "Mark a task as pending", false),
		newTaskRemoveCommand(e),
	)
	return cmd
}

func newTaskListCommand(e *env) *cobra.Command {
	var (
		listID    int64
		unfiled   bool
		completed bool
		pending   bool
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"all"},
		Short:   "Show tasks",
		Long: `Show tasks. Without flags every task is shown.

Examples:
  tasklists tasks ls --list 2
  tasklists tasks ls --unfiled
  tasklists tasks ls --pending`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				tasks []*task.Task
				err   error
			)
			switch {
			case cmd.Flags().Changed("list"):
				tasks, err = e.store.TasksByList(ctx, listID)
			case unfiled:
				tasks, err = e.store.TasksWithoutList(ctx)
			case completed:
				tasks, err = e.store.CompletedTasks(ctx)
			case pending:
				tasks, err = e.store.PendingTasks(ctx)
			default:
				tasks, err = e.store.Tasks(ctx, nil)
			}
			if err != nil {
				return fmt.Errorf("failed to get tasks: %w", err)
			}
			return printTasks(e.out, tasks)
		},
	}
	cmd.Flags().Int64VarP(&listID, "list", "l", 0, "Only tasks of this list")
	cmd.Flags().BoolVarP(&unfiled, "unfiled", "u", false, "Only tasks without a list")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed tasks")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only pending tasks")
	cmd.MarkFlagsMutuallyExclusive("list", "unfiled", "completed", "pending")
	return cmd
}

func newTaskAddCommand(e *env) *cobra.Command {
	var (
		listID      int64
		description string
		due         string
		priority    int
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Long: `Create a task.

Examples:
  tasklists tasks add "Buy milk"
  tasklists tasks add "Write report" --list 1 --due 2026-03-01 --priority 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.TaskInput{Title: nullable.Value(args[0])}
			if cmd.Flags().Changed("list") {
				in.ListID = nullable.Value(listID)
			}
			if description != "" {
				in.Description = nullable.Value(description)
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				in.DueDate = nullable.Value(d)
			}
			if cmd.Flags().Changed("priority") {
				in.Priority = nullable.Value(task.Priority(priority))
			}

			t, err := e.store.CreateTask(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}
			fmt.Fprintf(e.out, "Created task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&listID, "list", "l", 0, "List id")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&priority, "priority", "p", int(task.DefaultPriority), "Priority: 1 high, 2 medium, 3 low")
	return cmd
}

func newTaskEditCommand(e *env) *cobra.Command {
	var (
		title       string
		listRef     string
		description string
		clearDesc   bool
		due         string
		clearDue    bool
		priority    int
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task",
		Long: `Change the given fields of a task and leave the rest alone.

Examples:
  tasklists tasks edit 4 --title "Write final report"
  tasklists tasks edit 4 --list none --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var in client.TaskInput
			if flags.Changed("title") {
				in.Title = nullable.Value(title)
			}
			if flags.Changed("list") {
				switch strings.ToLower(listRef) {
				case "none", "0", "":
					in.ListID = nullable.Null[int64]()
				default:
					listID, err := parseID(listRef)
					if err != nil {
						return err
					}
					in.ListID = nullable.Value(listID)
				}
			}
			switch {
			case clearDesc:
				in.Description = nullable.Null[string]()
			case flags.Changed("desc"):
				in.Description = nullable.Value(description)
			}
			switch {
			case clearDue:
				in.DueDate = nullable.Null[time.Time]()
			case flags.Changed("due"):
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				in.DueDate = nullable.Value(d)
			}
			if flags.Changed("priority") {
				in.Priority = nullable.Value(task.Priority(priority))
			}

			if !in.Title.IsSet() && !in.ListID.IsSet() && !in.Description.IsSet() &&
				!in.DueDate.IsSet() && !in.Priority.IsSet() {
				return errors.New("nothing to change, see --help for the available flags")
			}

			t, err := e.store.UpdateTask(cmd.Context(), id, in)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
			fmt.Fprintf(e.out, "Updated task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&listRef, "list", "l", "", `Move to a list id, or "none" to remove it from its list`)
	cmd.Flags().StringVarP(&description, "desc", "d", "", "New description")
	cmd.Flags().BoolVar(&clearDesc, "clear-desc", false, "Remove the description")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().IntVarP(&priority, "priority", "p", int(task.DefaultPriority), "New priority")
	cmd.MarkFlagsMutuallyExclusive("desc", "clear-desc")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func newTaskStateCommand(e *env, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			apply := e.store.PendingTask
			if completed {
				apply = e.store.CompleteTask
			}
			t, err := apply(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
			fmt.Fprintf(e.out, "%s %d: %s\n", checkbox(t.IsCompleted), t.ID, t.Title)
			return nil
		},
	}
}

func newTaskRemoveCommand(e *env) *cobra.Command {
	var listID int64

	cmd := &cobra.Command{
		Use:     "rm [ID]",
		Aliases: []string{"delete"},
		Short:   "Delete a task, or every task of a list with --list",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("list") {
				if len(args) > 0 {
					return errors.New("give either a task id or --list, not both")
				}
				n, err := e.store.DeleteTasksByList(cmd.Context(), listID)
				if err != nil {
					return fmt.Errorf("failed to delete tasks: %w", err)
				}
				fmt.Fprintf(e.out, "Deleted %d tasks from list %d\n", n, listID)
				return nil
			}

			if len(args) == 0 {
				return errors.New("missing task id")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := e.store.DeleteTask(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}
			fmt.Fprintf(e.out, "Deleted task %d\n", id)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&listID, "list", "l", 0, "Delete every task of this list")
	return cmd
}
