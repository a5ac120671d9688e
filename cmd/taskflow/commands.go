package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/Joseda-hg/taskflow/internal/api"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
	"github.com/Joseda-hg/taskflow/internal/version"
)

func runVersion() error {
	fmt.Println("taskflow", version.String())
	return nil
}

// runList prints the filtered task view without starting the TUI.
func (a *app) runList(args []string) error {
	flags := flag.NewFlagSet("list", flag.ContinueOnError)
	search := flags.String("search", "", "case-insensitive title/description search")
	priority := flags.String("priority", model.FilterAll, "priority filter (all, low, medium, high)")
	completed := flags.String("completed", string(model.CompletedAll), "completed filter (all, completed, incomplete)")
	list := flags.String("list", model.FilterAll, "list id or name")
	sortBy := flags.String("sort", string(model.SortByCreatedAt), "sort field (createdAt, dueDate, priority, title)")
	order := flags.String("order", string(model.SortDesc), "sort order (asc, desc)")
	viewName := flags.String("view", "", "saved view name")
	if err := flags.Parse(args); err != nil {
		return err
	}

	filter := model.DefaultFilter()
	if *viewName != "" {
		view, err := a.history.GetViewByName(context.Background(), *viewName)
		if err != nil {
			return fmt.Errorf("load view %q: %w", *viewName, err)
		}
		filter = view.Filter
	} else {
		var err error
		filter.Search = *search
		if *priority != model.FilterAll {
			p, err := model.ParsePriority(*priority)
			if err != nil {
				return err
			}
			filter.Priority = string(p)
		}
		if filter.Completed, err = model.ParseCompletedFilter(*completed); err != nil {
			return err
		}
		if filter.SortBy, err = model.ParseSortBy(*sortBy); err != nil {
			return err
		}
		if filter.SortOrder, err = model.ParseSortOrder(*order); err != nil {
			return err
		}
	}

	a.bootstrap(context.Background())
	if *viewName == "" && *list != model.FilterAll {
		listID, ok := findList(a.store.Lists(), *list)
		if !ok {
			return fmt.Errorf("unknown list %q", *list)
		}
		filter.ListID = listID
	}

	tasks := a.store.FilteredTasks(filter)
	writeTasks(os.Stdout, tasks, a.store.Lists(), a.store.Tags(), model.DateOf(time.Now()))
	return a.store.Err()
}

func findList(lists []model.TaskList, value string) (string, bool) {
	for _, list := range lists {
		if list.ID == value {
			return list.ID, true
		}
	}
	for _, list := range lists {
		if strings.EqualFold(list.Name, value) {
			return list.ID, true
		}
	}
	return "", false
}

func writeTasks(out io.Writer, tasks []model.Task, lists []model.TaskList, tags []model.Tag, today model.Date) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "no tasks")
		return
	}
	listNames := make(map[string]string, len(lists))
	for _, list := range lists {
		listNames[list.ID] = list.Name
	}
	tagNames := make(map[string]string, len(tags))
	for _, tag := range tags {
		tagNames[tag.ID] = tag.Name
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tDUE\tLIST\tTITLE\tTAGS")
	for _, task := range tasks {
		done := " "
		if task.Completed {
			done = "x"
		}
		names := make([]string, 0, len(task.Tags))
		for _, id := range task.Tags {
			if name, ok := tagNames[id]; ok {
				names = append(names, "#"+name)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			done,
			colorPriority(task.Priority),
			colorDue(task, today),
			listNames[task.ListID],
			task.Title,
			strings.Join(names, " "),
		)
	}
	_ = w.Flush()
}

func colorPriority(priority model.Priority) string {
	switch priority {
	case model.PriorityHigh:
		return color.RedString(string(priority))
	case model.PriorityMedium:
		return color.YellowString(string(priority))
	default:
		return color.GreenString(string(priority))
	}
}

func colorDue(task model.Task, today model.Date) string {
	if task.DueDate.IsZero() {
		return "-"
	}
	if !task.Completed && task.DueDate < today {
		return color.RedString(string(task.DueDate))
	}
	return string(task.DueDate)
}

// runExport writes the current session as a snapshot blob to a file or stdout.
func (a *app) runExport(args []string) error {
	a.bootstrap(context.Background())
	blob, err := a.store.ExportSnapshot()
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		_, err := os.Stdout.Write(append(blob, '\n'))
		return err
	}
	if err := os.WriteFile(args[0], blob, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("exported to %s\n", args[0])
	return nil
}

// runImport replaces the saved session with a snapshot file. The import is
// persisted to the snapshot history so the next start can restore it offline.
func (a *app) runImport(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: taskflow import <file>")
	}
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	snapshot, err := store.DecodeSnapshot(blob)
	if err != nil {
		return err
	}
	if !a.store.ImportSnapshot(blob) {
		return errors.New("snapshot rejected")
	}
	fmt.Printf("imported %d tasks, %d lists, %d tags\n", len(snapshot.Tasks), len(snapshot.Lists), len(snapshot.Tags))
	return nil
}

func (a *app) runHistory() error {
	snapshots, err := a.history.ListSnapshots(context.Background())
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("no snapshots")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tSUMMARY")
	for _, snapshot := range snapshots {
		fmt.Fprintf(w, "%d\t%s\t%s\n", snapshot.ID, snapshot.CreatedAt.Local().Format("2006-01-02 15:04:05"), snapshot.Summary)
	}
	return w.Flush()
}

func (a *app) runRestore(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: taskflow restore <snapshot-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snapshot id %q", args[0])
	}
	snapshot, err := a.history.GetSnapshot(context.Background(), id)
	if err != nil {
		return err
	}
	if !a.store.ImportSnapshot(snapshot.Payload) {
		return fmt.Errorf("snapshot %d rejected", id)
	}
	fmt.Printf("restored snapshot %d\n", id)
	return nil
}

func (a *app) runHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.APITimeout())
	defer cancel()
	health, err := a.client.Health(ctx)
	if err != nil {
		fmt.Println(color.RedString(describeHealthError(err)), a.cfg.APIBaseURL)
		return err
	}
	fmt.Printf("%s %s (database: %s)\n", color.GreenString(health.Status), a.cfg.APIBaseURL, health.Database)
	return nil
}

// describeHealthError separates a backend that answered with a failure from one that never answered.
func describeHealthError(err error) string {
	switch status := api.StatusCode(err); {
	case status >= 500:
		return fmt.Sprintf("unhealthy (HTTP %d)", status)
	case status != 0:
		return fmt.Sprintf("unexpected response (HTTP %d)", status)
	case errors.Is(err, api.ErrMalformedResponse):
		return "unexpected response"
	default:
		return "unreachable"
	}
}
