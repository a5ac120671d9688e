package store

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/taskflow/internal/model"
)

func sampleTasks() []model.Task {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return []model.Task{
		{ID: "1", Title: "Write proposal", Description: "Q1 budget", Priority: model.PriorityHigh, ListID: "2", DueDate: "2026-10-20", CreatedAt: base, Tags: []string{"urgent", "focus"}},
		{ID: "2", Title: "review feedback", Priority: model.PriorityMedium, ListID: "2", DueDate: "2026-10-18", CreatedAt: base.Add(time.Hour), Tags: []string{}},
		{ID: "3", Title: "Buy groceries", Description: "milk, eggs", Completed: true, Priority: model.PriorityLow, ListID: "1", CreatedAt: base.Add(2 * time.Hour), Tags: []string{"quick"}},
		{ID: "4", Title: "Dentist", Priority: model.PriorityMedium, ListID: "1", DueDate: "2026-10-25", CreatedAt: base.Add(3 * time.Hour), Tags: []string{}},
		{ID: "5", Title: "Learn generics", Description: "Go course", Priority: model.PriorityLow, ListID: "3", CreatedAt: base.Add(4 * time.Hour), Tags: []string{"focus"}},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func TestApplySearchMatchesTitleOrDescription(t *testing.T) {
	filter := model.DefaultFilter()
	filter.Search = "MILK"

	got := Apply(sampleTasks(), filter, nil)
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("expected only task 3, got %v", ids(got))
	}

	for _, search := range []string{"e", "review", "go"} {
		filter.Search = search
		for _, task := range Apply(sampleTasks(), filter, nil) {
			haystack := strings.ToLower(task.Title + "\x00" + task.Description)
			if !strings.Contains(haystack, search) {
				t.Fatalf("task %s does not contain %q", task.ID, search)
			}
		}
	}

	filter.Search = ""
	if got := Apply(sampleTasks(), filter, nil); len(got) != 5 {
		t.Fatalf("expected unfiltered set for empty search, got %d", len(got))
	}
}

func TestApplyPredicatesAreConjunctive(t *testing.T) {
	filter := model.DefaultFilter()
	filter.Priority = string(model.PriorityMedium)
	filter.Completed = model.CompletedIncomplete
	filter.ListID = "1"

	got := Apply(sampleTasks(), filter, nil)
	if len(got) != 1 || got[0].ID != "4" {
		t.Fatalf("expected only task 4, got %v", ids(got))
	}
}

func TestApplyTagsAreDisjunctive(t *testing.T) {
	filter := model.DefaultFilter()
	filter.TagIDs = []string{"quick", "urgent"}
	filter.SortOrder = model.SortAsc

	got := Apply(sampleTasks(), filter, nil)
	if !slices.Equal(ids(got), []string{"1", "3"}) {
		t.Fatalf("expected tasks 1 and 3, got %v", ids(got))
	}
}

func TestApplyDueDateAbsentSortsLast(t *testing.T) {
	filter := model.DefaultFilter()
	filter.SortBy = model.SortByDueDate
	filter.SortOrder = model.SortAsc

	got := Apply(sampleTasks(), filter, nil)
	if !slices.Equal(ids(got), []string{"2", "1", "4", "3", "5"}) {
		t.Fatalf("unexpected due date order %v", ids(got))
	}
}

func TestApplyPriorityRanksHighFirst(t *testing.T) {
	filter := model.DefaultFilter()
	filter.SortBy = model.SortByPriority
	filter.SortOrder = model.SortAsc

	got := Apply(sampleTasks(), filter, nil)
	if !slices.Equal(ids(got), []string{"1", "2", "4", "3", "5"}) {
		t.Fatalf("expected stable priority order, got %v", ids(got))
	}
}

func TestApplyTitleIsLocaleAware(t *testing.T) {
	filter := model.DefaultFilter()
	filter.SortBy = model.SortByTitle
	filter.SortOrder = model.SortAsc

	got := Apply(sampleTasks(), filter, nil)
	if !slices.Equal(ids(got), []string{"3", "4", "5", "2", "1"}) {
		t.Fatalf("expected case-insensitive title order, got %v", ids(got))
	}
}

func TestApplyDescendingReversesDistinctKeys(t *testing.T) {
	for _, sortBy := range []model.SortBy{model.SortByCreatedAt, model.SortByTitle} {
		filter := model.DefaultFilter()
		filter.SortBy = sortBy
		filter.SortOrder = model.SortAsc
		asc := ids(Apply(sampleTasks(), filter, nil))

		filter.SortOrder = model.SortDesc
		desc := ids(Apply(sampleTasks(), filter, nil))

		slices.Reverse(desc)
		if !slices.Equal(asc, desc) {
			t.Fatalf("%s: expected descending to reverse ascending, got %v vs %v", sortBy, asc, desc)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := ids(tasks)

	filter := model.DefaultFilter()
	filter.SortBy = model.SortByTitle
	got := Apply(tasks, filter, nil)
	got[0].Title = "changed"
	got[0].Tags = append(got[0].Tags, "x")

	if !slices.Equal(ids(tasks), before) {
		t.Fatalf("expected input order untouched, got %v", ids(tasks))
	}
	for _, task := range tasks {
		if task.Title == "changed" {
			t.Fatalf("expected input tasks untouched")
		}
	}
}
