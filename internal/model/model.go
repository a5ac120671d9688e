package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidID = errors.New("invalid id")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ParsePriority(value string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority %q", value)
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	DueDate     Date      `json:"dueDate,omitempty"`
	ListID      string    `json:"listId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []string  `json:"tags"`
	Order       int       `json:"order"`
}

func (t Task) HasTag(tagID string) bool {
	for _, id := range t.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	t.Tags = append([]string{}, t.Tags...)
	return t
}

type TaskList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	TaskCount int       `json:"taskCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TaskTemplate struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	DueOffset   int      `json:"dueOffset"`
	ListID      string   `json:"listId"`
}

type UserStats struct {
	CurrentStreak       int  `json:"currentStreak"`
	LongestStreak       int  `json:"longestStreak"`
	TasksCompletedToday int  `json:"tasksCompletedToday"`
	TasksCompletedTotal int  `json:"tasksCompletedTotal"`
	LastCompletedDate   Date `json:"lastCompletedDate"`
}

// Snapshot is the full exportable state of a session.
type Snapshot struct {
	Tasks     []Task         `json:"tasks"`
	Lists     []TaskList     `json:"lists"`
	Tags      []Tag          `json:"tags"`
	Templates []TaskTemplate `json:"templates"`
	Stats     UserStats      `json:"stats"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Settings struct {
	Theme                Theme `json:"theme"`
	SoundEnabled         bool  `json:"soundEnabled"`
	NotificationsEnabled bool  `json:"notificationsEnabled"`
}

func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem, SoundEnabled: true, NotificationsEnabled: true}
}

// ParseRemoteID converts a domain id into the backend's numeric identifier.
func ParseRemoteID(id string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return value, nil
}

func FormatRemoteID(id int64) string {
	return strconv.FormatInt(id, 10)
}
