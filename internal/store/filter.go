package store

import (
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskflow/internal/model"
)

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

func newCollator(tag language.Tag) *collate.Collator {
	return collate.New(tag)
}

// Apply filters and sorts tasks according to filter and returns a new slice.
// The input is never modified. A nil collator compares titles in English.
// Collators are not safe for concurrent use, so callers pass their own.
func Apply(tasks []model.Task, filter model.FilterState, collator *collate.Collator) []model.Task {
	if collator == nil {
		collator = newCollator(language.English)
	}

	search := strings.ToLower(filter.Search)
	wantedTags := make(map[string]struct{}, len(filter.TagIDs))
	for _, id := range filter.TagIDs {
		wantedTags[id] = struct{}{}
	}

	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		if filter.Priority != "" && filter.Priority != model.FilterAll && string(task.Priority) != filter.Priority {
			continue
		}
		switch filter.Completed {
		case model.CompletedOnly:
			if !task.Completed {
				continue
			}
		case model.CompletedIncomplete:
			if task.Completed {
				continue
			}
		}
		if filter.ListID != "" && filter.ListID != model.FilterAll && task.ListID != filter.ListID {
			continue
		}
		if len(wantedTags) > 0 && !sharesTag(task, wantedTags) {
			continue
		}
		out = append(out, task.Clone())
	}

	compare := comparator(filter.SortBy, collator)
	if filter.SortOrder == model.SortAsc {
		slices.SortStableFunc(out, compare)
	} else {
		slices.SortStableFunc(out, func(a, b model.Task) int { return -compare(a, b) })
	}
	return out
}

func sharesTag(task model.Task, wanted map[string]struct{}) bool {
	for _, id := range task.Tags {
		if _, ok := wanted[id]; ok {
			return true
		}
	}
	return false
}

func comparator(sortBy model.SortBy, collator *collate.Collator) func(a, b model.Task) int {
	switch sortBy {
	case model.SortByDueDate:
		return func(a, b model.Task) int {
			return compareFloat(dueKey(a), dueKey(b))
		}
	case model.SortByPriority:
		return func(a, b model.Task) int {
			return rankOf(a.Priority) - rankOf(b.Priority)
		}
	case model.SortByTitle:
		return func(a, b model.Task) int {
			return collator.CompareString(a.Title, b.Title)
		}
	default:
		return func(a, b model.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

// dueKey places tasks without a due date after every dated task.
func dueKey(task model.Task) float64 {
	due, ok := task.DueDate.Time()
	if !ok {
		return math.Inf(1)
	}
	return float64(due.Unix())
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func rankOf(priority model.Priority) int {
	if rank, ok := priorityRank[priority]; ok {
		return rank
	}
	return priorityRank[model.PriorityLow]
}

func sortByOrder(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int { return a.Order - b.Order })
}
