package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newTasksCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Browse and manage tasks",
	}

	cmd.AddCommand(
		newTasksListCmd(app),
		&cobra.Command{
			Use:   "get <task-id>",
			Short: "Show one task with its bids",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				task, err := app.client.Tasks.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("fetch task %s: %w", args[0], err)
				}
				return writeOutput(cmd, task, func() string {
					return listing.Task(task, app.styles(ctx))
				})
			},
		},
		newTasksCreateCmd(app),
		newTasksUpdateCmd(app),
		&cobra.Command{
			Use:   "delete <task-id>",
			Short: "Delete a task you own",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.client.Tasks.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("delete task %s: %w", args[0], err)
				}
				app.notifier.Success("Task deleted")
				return nil
			},
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List the tasks you posted or were assigned",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				tasks, err := app.client.Tasks.Mine(ctx)
				if err != nil {
					return fmt.Errorf("fetch my tasks: %w", err)
				}
				return writeOutput(cmd, tasks, func() string {
					return listing.TaskRows(tasks, app.styles(ctx))
				})
			},
		},
	)

	return cmd
}

func newTasksListCmd(app *app) *cobra.Command {
	var filter domain.TaskFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search the task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if status != "" {
				parsed, err := domain.ParseTaskStatus(status)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}
			if filter.MinBudget > 0 && filter.MaxBudget > 0 && filter.MinBudget > filter.MaxBudget {
				return errors.New("--min-budget must not exceed --max-budget")
			}

			page, err := app.client.Tasks.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			return writeOutput(cmd, page, func() string {
				return listing.Tasks(page, app.styles(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Match title or description")
	cmd.Flags().Float64Var(&filter.MinBudget, "min-budget", 0, "Minimum budget")
	cmd.Flags().Float64Var(&filter.MaxBudget, "max-budget", 0, "Maximum budget")
	cmd.Flags().StringVar(&status, "status", "", "Status: open, in_progress, completed or cancelled")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 10, "Tasks per page")

	return cmd
}

func newTasksCreateCmd(app *app) *cobra.Command {
	var input domain.TaskInput
	var deadline string
	var attach []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if input.Budget <= 0 {
				return errors.New("--budget must be positive")
			}

			var err error
			if input.Deadline, err = normalizeDeadline(deadline); err != nil {
				return err
			}

			attachments, err := readAttachments(attach)
			if err != nil {
				return err
			}

			task, err := app.client.Tasks.Create(ctx, input, attachments)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			app.notifier.Success("Task created")
			return writeOutput(cmd, task, func() string {
				return listing.Task(task, app.styles(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&input.Category, "category", "", "Category")
	cmd.Flags().Float64Var(&input.Budget, "budget", 0, "Budget in dollars")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline as YYYY-MM-DD or RFC3339")
	cmd.Flags().StringArrayVar(&attach, "attach", nil, "File to attach (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("budget")
	_ = cmd.MarkFlagRequired("deadline")

	return cmd
}

func newTasksUpdateCmd(app *app) *cobra.Command {
	var input domain.TaskInput
	var deadline, status string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var err error
			if deadline != "" {
				if input.Deadline, err = normalizeDeadline(deadline); err != nil {
					return err
				}
			}
			if status != "" {
				if input.Status, err = domain.ParseTaskStatus(status); err != nil {
					return err
				}
			}
			if input == (domain.TaskInput{}) {
				return errors.New("nothing to update, pass at least one flag")
			}

			task, err := app.client.Tasks.Update(ctx, args[0], input)
			if err != nil {
				return fmt.Errorf("update task %s: %w", args[0], err)
			}
			app.notifier.Success("Task updated")
			return writeOutput(cmd, task, func() string {
				return listing.Task(task, app.styles(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&input.Category, "category", "", "Category")
	cmd.Flags().Float64Var(&input.Budget, "budget", 0, "Budget in dollars")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline as YYYY-MM-DD or RFC3339")
	cmd.Flags().StringVar(&status, "status", "", "Status: open, in_progress, completed or cancelled")

	return cmd
}

// normalizeDeadline accepts a calendar date or a full timestamp and returns
// RFC3339.
func normalizeDeadline(raw string) (string, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", fmt.Errorf("invalid deadline %q, use YYYY-MM-DD or RFC3339", raw)
	}
	return t.UTC().Format(time.RFC3339), nil
}

func readAttachments(paths []string) ([]domain.Attachment, error) {
	attachments := make([]domain.Attachment, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		attachments = append(attachments, domain.Attachment{Name: filepath.Base(path), Content: content})
	}
	return attachments, nil
}
