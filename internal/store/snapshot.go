package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Joseda-hg/taskflow/internal/model"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

type snapshotEnvelope struct {
	Tasks     *[]model.Task         `json:"tasks"`
	Lists     *[]model.TaskList     `json:"lists"`
	Tags      *[]model.Tag          `json:"tags"`
	Templates *[]model.TaskTemplate `json:"templates"`
	Stats     *model.UserStats      `json:"stats"`
}

// ExportSnapshot serializes the whole session as indented JSON.
func (s *Store) ExportSnapshot() ([]byte, error) {
	snapshot := s.Snapshot()
	return EncodeSnapshot(snapshot)
}

// ImportSnapshot replaces the whole session with blob. On any decode or
// validation failure the current state is kept and false is returned.
func (s *Store) ImportSnapshot(blob []byte) bool {
	snapshot, err := DecodeSnapshot(blob)
	if err != nil {
		s.logger.Warn("import rejected", slog.Any("err", err))
		return false
	}

	s.mu.Lock()
	s.tasks = snapshot.Tasks
	s.lists = snapshot.Lists
	s.tags = snapshot.Tags
	s.templates = snapshot.Templates
	s.stats = snapshot.Stats
	s.mu.Unlock()

	s.logger.Info("snapshot imported",
		slog.Int("tasks", len(snapshot.Tasks)),
		slog.Int("lists", len(snapshot.Lists)),
	)
	s.persist(context.Background())
	return true
}

func EncodeSnapshot(snapshot model.Snapshot) ([]byte, error) {
	if snapshot.Tasks == nil {
		snapshot.Tasks = []model.Task{}
	}
	for i := range snapshot.Tasks {
		if snapshot.Tasks[i].Tags == nil {
			snapshot.Tasks[i].Tags = []string{}
		}
	}
	if snapshot.Lists == nil {
		snapshot.Lists = []model.TaskList{}
	}
	if snapshot.Tags == nil {
		snapshot.Tags = []model.Tag{}
	}
	if snapshot.Templates == nil {
		snapshot.Templates = []model.TaskTemplate{}
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses blob strictly: every top-level key must be present and
// non-null, unknown fields and trailing data are rejected.
func DecodeSnapshot(blob []byte) (model.Snapshot, error) {
	decoder := json.NewDecoder(bytes.NewReader(blob))
	decoder.DisallowUnknownFields()

	var envelope snapshotEnvelope
	if err := decoder.Decode(&envelope); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return model.Snapshot{}, fmt.Errorf("%w: trailing data", ErrInvalidSnapshot)
	}

	switch {
	case envelope.Tasks == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing tasks", ErrInvalidSnapshot)
	case envelope.Lists == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing lists", ErrInvalidSnapshot)
	case envelope.Tags == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing tags", ErrInvalidSnapshot)
	case envelope.Templates == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing templates", ErrInvalidSnapshot)
	case envelope.Stats == nil:
		return model.Snapshot{}, fmt.Errorf("%w: missing stats", ErrInvalidSnapshot)
	}

	snapshot := model.Snapshot{
		Tasks:     *envelope.Tasks,
		Lists:     *envelope.Lists,
		Tags:      *envelope.Tags,
		Templates: *envelope.Templates,
		Stats:     *envelope.Stats,
	}
	if err := validateSnapshot(&snapshot); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return snapshot, nil
}

func validateSnapshot(snapshot *model.Snapshot) error {
	for i := range snapshot.Tasks {
		task := &snapshot.Tasks[i]
		if task.ID == "" {
			return fmt.Errorf("task %d: missing id", i)
		}
		if strings.TrimSpace(task.Title) == "" {
			return fmt.Errorf("task %s: empty title", task.ID)
		}
		if !task.Priority.Valid() {
			return fmt.Errorf("task %s: invalid priority %q", task.ID, task.Priority)
		}
		if err := validateDate(task.DueDate); err != nil {
			return fmt.Errorf("task %s: %w", task.ID, err)
		}
		if task.Tags == nil {
			task.Tags = []string{}
		}
	}
	for _, list := range snapshot.Lists {
		if list.ID == "" || strings.TrimSpace(list.Name) == "" {
			return fmt.Errorf("list %q: missing id or name", list.ID)
		}
		if list.TaskCount < 0 {
			return fmt.Errorf("list %s: negative task count", list.ID)
		}
	}
	for _, template := range snapshot.Templates {
		if !template.Priority.Valid() {
			return fmt.Errorf("template %s: invalid priority %q", template.ID, template.Priority)
		}
	}
	stats := snapshot.Stats
	if stats.CurrentStreak < 0 || stats.LongestStreak < 0 || stats.TasksCompletedToday < 0 || stats.TasksCompletedTotal < 0 {
		return errors.New("stats: negative counter")
	}
	return validateDate(stats.LastCompletedDate)
}

func validateDate(date model.Date) error {
	if date.IsZero() {
		return nil
	}
	if _, ok := date.Time(); !ok {
		return fmt.Errorf("invalid date %q", date)
	}
	return nil
}
