package tui

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDue
	fieldList
	fieldTags
)

var priorityCycle = []string{string(model.PriorityLow), string(model.PriorityMedium), string(model.PriorityHigh)}

type formInput struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     model.Date
	ListName    string
	TagNames    []string
}

func buildFormFields(task *model.Task, listName string, tags []string) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "Priority (space/←→)"},
		{Label: "Due (YYYY-MM-DD)"},
		{Label: "List (space/←→)"},
		{Label: "Tags (space/←→)"},
	}
	fields[fieldList].Value = listName
	fields[fieldTags].Value = strings.Join(tags, ", ")

	if task == nil {
		fields[fieldPriority].Value = string(model.PriorityMedium)
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldPriority].Value = string(task.Priority)
	fields[fieldDue].Value = string(task.DueDate)
	return fields
}

func parseFormFields(fields []formField) (formInput, error) {
	title := strings.TrimSpace(fields[fieldTitle].Value)
	if title == "" {
		return formInput{}, fmt.Errorf("title is required")
	}

	priority, err := model.ParsePriority(fields[fieldPriority].Value)
	if err != nil {
		return formInput{}, err
	}

	due, err := model.ParseDate(fields[fieldDue].Value)
	if err != nil {
		return formInput{}, fmt.Errorf("invalid due date")
	}

	return formInput{
		Title:       title,
		Description: strings.TrimSpace(fields[fieldDescription].Value),
		Priority:    priority,
		DueDate:     due,
		ListName:    strings.TrimSpace(fields[fieldList].Value),
		TagNames:    parseTags(fields[fieldTags].Value),
	}, nil
}

func parseTags(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

// taskPatch carries every editable field; the list is fixed once a task exists.
func (in formInput) taskPatch(tagIDs []string) store.TaskPatch {
	title := in.Title
	description := in.Description
	priority := in.Priority
	due := in.DueDate
	return store.TaskPatch{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		DueDate:     &due,
		Tags:        &tagIDs,
	}
}

func isPriorityField(label string) bool {
	return strings.HasPrefix(label, "Priority")
}

func isListField(label string) bool {
	return strings.HasPrefix(label, "List")
}

func isTagsField(label string) bool {
	return strings.HasPrefix(label, "Tags")
}

func cycleValue(order []string, current string, delta int) string {
	if len(order) == 0 {
		return ""
	}
	value := strings.TrimSpace(current)
	index := 0
	for i, option := range order {
		if strings.EqualFold(option, value) {
			index = i
			break
		}
	}
	index = (index + delta + len(order)) % len(order)
	return order[index]
}
