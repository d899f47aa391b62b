package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"task-tracker/internal/client"
	"task-tracker/internal/config"
	"task-tracker/internal/models"
)

var errUsage = errors.New("usage")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	c := client.New(cfg.Client.APIURL, nil)
	if err := run(context.Background(), c, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printHelp(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "list":
		return handleList(ctx, c, rest, out)
	case "add":
		return handleAdd(ctx, c, rest, out)
	case "done":
		return handleDone(ctx, c, rest, out)
	case "rename":
		return handleRename(ctx, c, rest, out)
	case "delete":
		return handleDelete(ctx, c, rest, out)
	case "help", "-h", "--help":
		printHelp(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func handleList(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	filter := listCmd.String("filter", "all", "Filter tasks (all|completed|pending)")
	if err := listCmd.Parse(args); err != nil {
		return err
	}

	tasks, err := c.List(ctx)
	if err != nil {
		return err
	}

	// фильтр только на стороне клиента: API отдает список целиком
	shown := 0
	for _, task := range tasks {
		switch *filter {
		case "completed":
			if !task.Completed {
				continue
			}
		case "pending":
			if task.Completed {
				continue
			}
		}
		fmt.Fprintln(out, formatTask(task))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "No tasks found")
	}
	return nil
}

func handleAdd(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	addCmd := flag.NewFlagSet("add", flag.ContinueOnError)
	name := addCmd.String("name", "", "Task name")
	if err := addCmd.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}

	task, err := c.Create(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added task with ID %s\n", task.ID)
	return nil
}

func handleDone(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	doneCmd := flag.NewFlagSet("done", flag.ContinueOnError)
	id := doneCmd.String("id", "", "Task ID to mark as done")
	if err := doneCmd.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("--id is required")
	}

	if _, err := c.MarkDone(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Task %s marked as done\n", *id)
	return nil
}

func handleRename(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	renameCmd := flag.NewFlagSet("rename", flag.ContinueOnError)
	id := renameCmd.String("id", "", "Task ID to rename")
	name := renameCmd.String("name", "", "New task name")
	if err := renameCmd.Parse(args); err != nil {
		return err
	}
	if *id == "" || strings.TrimSpace(*name) == "" {
		return errors.New("--id and --name are required")
	}

	task, err := c.Rename(ctx, *id, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Task %s renamed to %q\n", task.ID, task.Name)
	return nil
}

func handleDelete(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	deleteCmd := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := deleteCmd.String("id", "", "Task ID to delete")
	if err := deleteCmd.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("--id is required")
	}

	deleted, err := c.Delete(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Task %s deleted\n", deleted)
	return nil
}

func formatTask(task models.Task) string {
	status := "Pending"
	if task.Completed {
		status = "Completed"
	}
	return fmt.Sprintf("%s: %s [%s]", task.ID, task.Name, status)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Usage: tasks <command> [flags]

Commands:
  list   [--filter=all|completed|pending]  List tasks
  add    --name="..."                      Add new task
  done   --id=ID                           Mark task as done
  rename --id=ID --name="..."              Rename task
  delete --id=ID                           Delete task

Configuration:
  The API address is read from client.api_url in tasktracker.yaml
  or from TASKTRACKER_CLIENT_API_URL (default http://localhost:5000/api/tasks).`)
}
