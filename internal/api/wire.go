package api

import (
	"fmt"
	"time"

	"github.com/Joseda-hg/taskflow/internal/model"
)

// Wire types mirror the backend's snake_case payloads. Pointer fields let the
// decoder tell an absent field from a zero value.

type wireTag struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type wireTask struct {
	ID          *int64    `json:"id"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Completed   *bool     `json:"completed"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"due_date"`
	ListID      *int64    `json:"list_id"`
	CreatedAt   *string   `json:"created_at"`
	UpdatedAt   *string   `json:"updated_at"`
	Tags        []wireTag `json:"tags"`
}

type wirePagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type wireTaskPage struct {
	Data       *[]wireTask     `json:"data"`
	Pagination *wirePagination `json:"pagination"`
}

type wireCreateTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	ListID      int64  `json:"list_id"`
}

type wireCreated struct {
	ID        *int64  `json:"id"`
	CreatedAt *string `json:"created_at"`
}

type wireList struct {
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	TaskCount *int    `json:"task_count"`
	CreatedAt *string `json:"created_at"`
}

type wireTemplate struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Priority      *string `json:"priority"`
	DueOffsetDays *int    `json:"due_offset_days"`
	ListID        *int64  `json:"list_id"`
}

type wireStats struct {
	CurrentStreak       *int    `json:"current_streak"`
	LongestStreak       *int    `json:"longest_streak"`
	TasksCompletedToday *int    `json:"tasks_completed_today"`
	TasksCompletedTotal *int    `json:"tasks_completed_total"`
	LastCompletedDate   *string `json:"last_completed_date"`
}

const defaultListIcon = "list"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

func parseTimestamp(field, value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, malformed("%s: invalid timestamp %q", field, value)
}

func parseOptionalDate(field string, value *string) (model.Date, error) {
	if value == nil {
		return "", nil
	}
	date, err := model.ParseDate(*value)
	if err != nil {
		return "", malformed("%s: %v", field, err)
	}
	return date, nil
}

func parsePriority(field string, value *string) (model.Priority, error) {
	if value == nil {
		return "", malformed("%s: missing", field)
	}
	priority, err := model.ParsePriority(*value)
	if err != nil {
		return "", malformed("%s: %v", field, err)
	}
	return priority, nil
}

func (w wireTag) toDomain() (model.Tag, error) {
	if w.ID == nil || w.Name == nil {
		return model.Tag{}, malformed("tag: missing id or name")
	}
	tag := model.Tag{ID: model.FormatRemoteID(*w.ID), Name: *w.Name}
	if w.Color != nil {
		tag.Color = *w.Color
	}
	return tag, nil
}

func (w wireTask) toDomain() (model.Task, []model.Tag, error) {
	if w.ID == nil {
		return model.Task{}, nil, malformed("task: missing id")
	}
	id := *w.ID
	if w.Title == nil {
		return model.Task{}, nil, malformed("task %d: missing title", id)
	}
	if w.ListID == nil {
		return model.Task{}, nil, malformed("task %d: missing list_id", id)
	}
	if w.Completed == nil {
		return model.Task{}, nil, malformed("task %d: missing completed", id)
	}
	if w.CreatedAt == nil || w.UpdatedAt == nil {
		return model.Task{}, nil, malformed("task %d: missing timestamps", id)
	}

	priority, err := parsePriority(fmt.Sprintf("task %d priority", id), w.Priority)
	if err != nil {
		return model.Task{}, nil, err
	}
	dueDate, err := parseOptionalDate(fmt.Sprintf("task %d due_date", id), w.DueDate)
	if err != nil {
		return model.Task{}, nil, err
	}
	createdAt, err := parseTimestamp("created_at", *w.CreatedAt)
	if err != nil {
		return model.Task{}, nil, err
	}
	updatedAt, err := parseTimestamp("updated_at", *w.UpdatedAt)
	if err != nil {
		return model.Task{}, nil, err
	}

	task := model.Task{
		ID:        model.FormatRemoteID(id),
		Title:     *w.Title,
		Completed: *w.Completed,
		Priority:  priority,
		DueDate:   dueDate,
		ListID:    model.FormatRemoteID(*w.ListID),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Tags:      make([]string, 0, len(w.Tags)),
	}
	if w.Description != nil {
		task.Description = *w.Description
	}

	tags := make([]model.Tag, 0, len(w.Tags))
	for _, item := range w.Tags {
		tag, err := item.toDomain()
		if err != nil {
			return model.Task{}, nil, err
		}
		task.Tags = append(task.Tags, tag.ID)
		tags = append(tags, tag)
	}

	return task, tags, nil
}

func (w wireTaskPage) toDomain() (TaskPage, error) {
	if w.Data == nil {
		return TaskPage{}, malformed("task page: missing data")
	}

	page := TaskPage{Tasks: make([]model.Task, 0, len(*w.Data))}
	if w.Pagination != nil {
		page.Page = w.Pagination.Page
		page.Limit = w.Pagination.Limit
		page.Total = w.Pagination.Total
		page.Pages = w.Pagination.Pages
	}

	seen := make(map[string]struct{})
	for _, item := range *w.Data {
		task, tags, err := item.toDomain()
		if err != nil {
			return TaskPage{}, err
		}
		page.Tasks = append(page.Tasks, task)
		for _, tag := range tags {
			if _, ok := seen[tag.ID]; ok {
				continue
			}
			seen[tag.ID] = struct{}{}
			page.Tags = append(page.Tags, tag)
		}
	}
	return page, nil
}

func (w wireCreated) toDomain() (Created, error) {
	if w.ID == nil {
		return Created{}, malformed("created: missing id")
	}
	created := Created{ID: model.FormatRemoteID(*w.ID)}
	if w.CreatedAt != nil {
		createdAt, err := parseTimestamp("created_at", *w.CreatedAt)
		if err != nil {
			return Created{}, err
		}
		created.CreatedAt = createdAt
	}
	return created, nil
}

func (w wireList) toDomain() (model.TaskList, error) {
	if w.ID == nil {
		return model.TaskList{}, malformed("list: missing id")
	}
	if w.Name == nil || w.Color == nil {
		return model.TaskList{}, malformed("list %d: missing name or color", *w.ID)
	}

	list := model.TaskList{
		ID:    model.FormatRemoteID(*w.ID),
		Name:  *w.Name,
		Color: *w.Color,
		Icon:  defaultListIcon,
	}
	if w.TaskCount != nil {
		if *w.TaskCount < 0 {
			return model.TaskList{}, malformed("list %d: negative task_count", *w.ID)
		}
		list.TaskCount = *w.TaskCount
	}
	if w.CreatedAt != nil {
		createdAt, err := parseTimestamp("created_at", *w.CreatedAt)
		if err != nil {
			return model.TaskList{}, err
		}
		list.CreatedAt = createdAt
	}
	return list, nil
}

func (w wireTemplate) toDomain() (model.TaskTemplate, error) {
	if w.ID == nil || w.Title == nil {
		return model.TaskTemplate{}, malformed("template: missing id or title")
	}
	priority, err := parsePriority(fmt.Sprintf("template %d priority", *w.ID), w.Priority)
	if err != nil {
		return model.TaskTemplate{}, err
	}

	template := model.TaskTemplate{
		ID:       model.FormatRemoteID(*w.ID),
		Title:    *w.Title,
		Priority: priority,
	}
	if w.Description != nil {
		template.Description = *w.Description
	}
	if w.DueOffsetDays != nil {
		template.DueOffset = *w.DueOffsetDays
	}
	if w.ListID != nil {
		template.ListID = model.FormatRemoteID(*w.ListID)
	}
	return template, nil
}

func (w wireStats) toDomain() (model.UserStats, error) {
	if w.CurrentStreak == nil || w.LongestStreak == nil || w.TasksCompletedToday == nil || w.TasksCompletedTotal == nil {
		return model.UserStats{}, malformed("stats: missing counters")
	}
	for _, value := range []int{*w.CurrentStreak, *w.LongestStreak, *w.TasksCompletedToday, *w.TasksCompletedTotal} {
		if value < 0 {
			return model.UserStats{}, malformed("stats: negative counter")
		}
	}
	last, err := parseOptionalDate("last_completed_date", w.LastCompletedDate)
	if err != nil {
		return model.UserStats{}, err
	}
	return model.UserStats{
		CurrentStreak:       *w.CurrentStreak,
		LongestStreak:       *w.LongestStreak,
		TasksCompletedToday: *w.TasksCompletedToday,
		TasksCompletedTotal: *w.TasksCompletedTotal,
		LastCompletedDate:   last,
	}, nil
}
