package model

import (
	"fmt"
	"time"
)

const FilterAll = "all"

type CompletedFilter string

const (
	CompletedAll        CompletedFilter = "all"
	CompletedOnly       CompletedFilter = "completed"
	CompletedIncomplete CompletedFilter = "incomplete"
)

type SortBy string

const (
	SortByCreatedAt SortBy = "createdAt"
	SortByDueDate   SortBy = "dueDate"
	SortByPriority  SortBy = "priority"
	SortByTitle     SortBy = "title"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterState is a view configuration over the task collection. It is never sent to the backend.
type FilterState struct {
	Search    string          `json:"search"`
	Priority  string          `json:"priority"`
	Completed CompletedFilter `json:"completed"`
	ListID    string          `json:"listId"`
	TagIDs    []string        `json:"tagIds"`
	SortBy    SortBy          `json:"sortBy"`
	SortOrder SortOrder       `json:"sortOrder"`
}

func DefaultFilter() FilterState {
	return FilterState{
		Priority:  FilterAll,
		Completed: CompletedAll,
		ListID:    FilterAll,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

func ParseCompletedFilter(value string) (CompletedFilter, error) {
	switch CompletedFilter(value) {
	case "", CompletedAll:
		return CompletedAll, nil
	case CompletedOnly, CompletedIncomplete:
		return CompletedFilter(value), nil
	}
	return "", fmt.Errorf("invalid completed filter %q", value)
}

func ParseSortBy(value string) (SortBy, error) {
	switch SortBy(value) {
	case "":
		return SortByCreatedAt, nil
	case SortByCreatedAt, SortByDueDate, SortByPriority, SortByTitle:
		return SortBy(value), nil
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(value) {
	case "":
		return SortDesc, nil
	case SortAsc, SortDesc:
		return SortOrder(value), nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}

// View is a named, saved FilterState.
type View struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Filter    FilterState `json:"filter"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
