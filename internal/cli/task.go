package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/trailctl/pkg/model"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskListCmd(),
		newTaskGetCmd(),
		newTaskCreateCmd(),
		newTaskUpdateCmd(),
		newTaskDeleteCmd(),
	)
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			resp, err := client.ListTasks(cmd.Context(), model.Page{Page: page, PageSize: pageSize})
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(resp.Items) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			fmt.Fprintf(out, "%-14s  %-12s  %-8s  %-30s  %s\n", "ID", "STATUS", "PRIORITY", "TITLE", "UPDATED")
			fmt.Fprintf(out, "%-14s  %-12s  %-8s  %-30s  %s\n", "--", "------", "--------", "-----", "-------")
			for _, task := range resp.Items {
				fmt.Fprintf(out, "%-14s  %-12s  %-8s  %-30s  %s\n",
					task.ID, task.Status, task.Priority, truncate(task.Title, 30), humanize.Time(task.UpdatedAt))
			}
			if resp.HasMore() {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(resp.Items), resp.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page")
	return cmd
}

func newTaskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <task_id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			task, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			printTask(cmd, task)
			return nil
		},
	}
}

func newTaskCreateCmd() *cobra.Command {
	var req model.TaskCreate
	var priority string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			req.Title = args[0]
			req.Priority = model.TaskPriority(priority)

			task, err := client.CreateTask(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task created: %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().StringVar(&req.AssigneeID, "assignee", "", "Assignee user ID")
	return cmd
}

func newTaskUpdateCmd() *cobra.Command {
	var title, description, status, priority, assignee string

	cmd := &cobra.Command{
		Use:   "update <task_id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}

			// Only flags the user actually set are sent, so unset
			// fields keep their server-side values.
			var req model.TaskUpdate
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("status") {
				s := model.TaskStatus(status)
				req.Status = &s
			}
			if cmd.Flags().Changed("priority") {
				p := model.TaskPriority(priority)
				req.Priority = &p
			}
			if cmd.Flags().Changed("assignee") {
				req.AssigneeID = &assignee
			}

			task, err := client.UpdateTask(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			printTask(cmd, task)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status (TODO, IN_PROGRESS, DONE)")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee user ID")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task_id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			if err := client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task deleted: %s\n", args[0])
			return nil
		},
	}
}

func printTask(cmd *cobra.Command, task *model.Task) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Task: %s\n", task.ID)
	fmt.Fprintf(out, "  Title:    %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(out, "  Desc:     %s\n", task.Description)
	}
	fmt.Fprintf(out, "  Status:   %s\n", task.Status)
	fmt.Fprintf(out, "  Priority: %s\n", task.Priority)
	fmt.Fprintf(out, "  Owner:    %s\n", task.OwnerID)
	if task.AssigneeID != "" {
		fmt.Fprintf(out, "  Assignee: %s\n", task.AssigneeID)
	}
	fmt.Fprintf(out, "  Created:  %s\n", humanize.Time(task.CreatedAt))
	fmt.Fprintf(out, "  Updated:  %s\n", humanize.Time(task.UpdatedAt))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
