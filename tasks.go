package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/task-manager/client"
	"github.com/example/task-manager/config"
	domain "github.com/example/task-manager/domain/task"
	"github.com/spf13/cobra"
)

type tasksOptions struct {
	apiURL  string
	verbose bool
}

func newTasksCmd() *cobra.Command {
	opts := &tasksOptions{}

	cmd := &cobra.Command{
		Use:          "tasks",
		Short:        "Manage tasks through the task API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Task API base URL (default from config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log failed requests")

	cmd.AddCommand(
		newTasksListCmd(opts),
		newTasksGetCmd(opts),
		newTasksCreateCmd(opts),
		newTasksUpdateCmd(opts),
		newTasksStatusCmd(opts),
		newTasksDeleteCmd(opts),
	)
	return cmd
}

// client builds an API client from --api-url or the loaded config.
func (o *tasksOptions) client() (*client.Client, error) {
	baseURL := o.apiURL
	if baseURL == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		baseURL = cfg.ResolvedAPIBaseURL()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return client.New(baseURL, client.WithLogger(logger)), nil
}

func newTasksListCmd(opts *tasksOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			tasks, err := c.GetAllTasks(cmd.Context())
			if err != nil {
				return errors.New(client.Message(err, "Failed to fetch tasks"))
			}
			printTaskList(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

func newTasksGetCmd(opts *tasksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			t, err := c.GetTask(cmd.Context(), args[0])
			if err != nil {
				return errors.New(client.Message(err, "Failed to load task details"))
			}
			printTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

// taskFlags collects the optional task fields shared by create and update.
type taskFlags struct {
	title       string
	description string
	status      string
	due         string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Status (pending, in progress, completed)")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD, empty clears on update)")
}

// input includes only the flags the user set.
func (f *taskFlags) input(cmd *cobra.Command) domain.Input {
	var in domain.Input
	flags := cmd.Flags()
	if flags.Changed("title") {
		in.Title = domain.Ptr(f.title)
	}
	if flags.Changed("description") {
		in.Description = domain.Ptr(f.description)
	}
	if flags.Changed("status") {
		in.Status = domain.Ptr(f.status)
	}
	if flags.Changed("due") {
		in.DueDate = domain.Ptr(f.due)
	}
	return in
}

func newTasksCreateCmd(opts *tasksOptions) *cobra.Command {
	var fields taskFlags
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := fields.input(cmd)
			if len(args) == 1 && in.Title == nil {
				in.Title = domain.Ptr(args[0])
			}
			if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
				return errors.New("Task title is required")
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			t, err := c.CreateTask(cmd.Context(), in)
			if err != nil {
				return errors.New(client.Message(err, "Failed to create task"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Task created successfully"))
			printTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
	fields.register(cmd)
	return cmd
}

func newTasksUpdateCmd(opts *tasksOptions) *cobra.Command {
	var fields taskFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := fields.input(cmd)
			if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
				return errors.New("Task title is required")
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			t, err := c.UpdateTask(cmd.Context(), args[0], in)
			if err != nil {
				return errors.New(client.Message(err, "Failed to update task"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Task updated successfully"))
			printTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
	fields.register(cmd)
	return cmd
}

func newTasksStatusCmd(opts *tasksOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of a task",
		Long: `Change the status of a task.

Valid statuses are "pending", "in progress" and "completed"; quote the
multi-word status.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			status := strings.TrimSpace(args[1])
			if _, err := c.UpdateTask(cmd.Context(), args[0], domain.Input{Status: &status}); err != nil {
				return errors.New(client.Message(err, "Failed to update task status"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Task marked as "+status))
			return nil
		},
	}
}

func newTasksDeleteCmd(opts *tasksOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), c, args[0])
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}
			if err := c.DeleteTask(cmd.Context(), args[0]); err != nil {
				return errors.New(client.Message(err, "Failed to delete task"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Task deleted successfully"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

// confirm shows the task and asks before it is deleted.
func confirm(ctx context.Context, in io.Reader, out io.Writer, c *client.Client, id string) (bool, error) {
	t, err := c.GetTask(ctx, id)
	if err != nil {
		return false, errors.New(client.Message(err, "Failed to load task details"))
	}
	fmt.Fprintf(out, "Are you sure you want to delete %q? [y/N]: ", t.Title)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func printTaskList(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No tasks yet"))
		return
	}
	for _, t := range tasks {
		style := statusStyle(t.Status)
		line := fmt.Sprintf("%s %s %s", style.Render(t.Status.Icon()), titleStyle.Render(t.Title), style.Render("["+string(t.Status)+"]"))
		if due := formatDue(t); due != "" {
			line += " " + mutedStyle.Render("due "+due)
		}
		fmt.Fprintln(w, line)
		fmt.Fprintln(w, "  "+mutedStyle.Render(t.ID))
	}
}

func printTask(w io.Writer, t *domain.Task) {
	if t == nil {
		return
	}
	style := statusStyle(t.Status)
	fmt.Fprintf(w, "%s %s\n", style.Render(t.Status.Icon()), titleStyle.Render(t.Title))
	fmt.Fprintf(w, "  ID:      %s\n", t.ID)
	fmt.Fprintf(w, "  Status:  %s\n", style.Render(string(t.Status)))
	if t.Description != "" {
		fmt.Fprintf(w, "  Details: %s\n", t.Description)
	}
	if due := formatDue(*t); due != "" {
		fmt.Fprintf(w, "  Due:     %s\n", due)
	}
	fmt.Fprintf(w, "  Created: %s\n", mutedStyle.Render(t.CreatedAt.Local().Format("2006-01-02 15:04")))
	fmt.Fprintf(w, "  Updated: %s\n", mutedStyle.Render(t.UpdatedAt.Local().Format("2006-01-02 15:04")))
}

func formatDue(t domain.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.UTC().Format("January 2, 2006")
}
