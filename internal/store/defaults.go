package store

import (
	"github.com/google/uuid"

	"github.com/Joseda-hg/taskflow/internal/model"
)

const (
	defaultListColor = "#3b82f6"
	defaultTagColor  = "#6366f1"
)

// defaultLists mirror the backend's seed lists so that list ids stay resolvable offline.
func defaultLists() []model.TaskList {
	return []model.TaskList{
		{ID: "1", Name: "Personal", Color: "#10b981", Icon: "user"},
		{ID: "2", Name: "Work", Color: "#3b82f6", Icon: "briefcase"},
		{ID: "3", Name: "Shopping", Color: "#f59e0b", Icon: "shopping"},
	}
}

// resetToDefaults installs the fallback dataset. Callers hold s.mu or own s exclusively.
func (s *Store) resetToDefaults() {
	now := s.now().UTC()
	lists := defaultLists()
	for i := range lists {
		lists[i].CreatedAt = now
	}
	s.lists = lists
	s.tasks = []model.Task{}
	s.tags = []model.Tag{}
	s.templates = []model.TaskTemplate{}
	s.stats = model.UserStats{}
}

func newLocalID() string {
	return uuid.NewString()
}
