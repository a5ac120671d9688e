package main

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/Joseda-hg/taskflow/internal/api"
	"github.com/Joseda-hg/taskflow/internal/config"
	"github.com/Joseda-hg/taskflow/internal/model"
)

func TestFindListMatchesIDThenName(t *testing.T) {
	lists := []model.TaskList{
		{ID: "1", Name: "Personal"},
		{ID: "2", Name: "Work"},
	}

	if id, ok := findList(lists, "2"); !ok || id != "2" {
		t.Fatalf("expected id match 2, got %q %v", id, ok)
	}
	if id, ok := findList(lists, "personal"); !ok || id != "1" {
		t.Fatalf("expected name match 1, got %q %v", id, ok)
	}
	if _, ok := findList(lists, "Shopping"); ok {
		t.Fatalf("expected no match for unknown list")
	}
}

func TestWriteTasksShowsListAndTags(t *testing.T) {
	color.NoColor = true
	today := model.Date("2026-10-16")
	tasks := []model.Task{
		{ID: "7", Title: "Buy milk", Priority: model.PriorityLow, ListID: "1", Tags: []string{"t1"}, DueDate: model.Date("2026-10-10")},
		{ID: "8", Title: "Call bank", Priority: model.PriorityHigh, ListID: "2", Completed: true},
	}
	lists := []model.TaskList{{ID: "1", Name: "Personal"}, {ID: "2", Name: "Work"}}
	tags := []model.Tag{{ID: "t1", Name: "home"}}

	var out bytes.Buffer
	writeTasks(&out, tasks, lists, tags, today)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "Personal") || !strings.Contains(lines[1], "#home") || !strings.Contains(lines[1], "2026-10-10") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "x") || !strings.Contains(lines[2], "Work") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestWriteTasksEmpty(t *testing.T) {
	var out bytes.Buffer
	writeTasks(&out, nil, nil, nil, model.Date(""))
	if got := strings.TrimSpace(out.String()); got != "no tasks" {
		t.Fatalf("expected no tasks, got %q", got)
	}
}

func TestDescribeHealthError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("health: %w", &api.Error{StatusCode: 500, Message: "db down"}), "unhealthy (HTTP 500)"},
		{fmt.Errorf("health: %w", &api.Error{StatusCode: 404, Message: "HTTP 404"}), "unexpected response (HTTP 404)"},
		{fmt.Errorf("health: %w", api.ErrMalformedResponse), "unexpected response"},
		{errors.New("request failed: connection refused"), "unreachable"},
	}
	for _, tc := range cases {
		if got := describeHealthError(tc.err); got != tc.want {
			t.Fatalf("expected %q for %v, got %q", tc.want, tc.err, got)
		}
	}
}

func TestLoadConfigKeepsEnvOutOfSavedFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("TASKFLOW_WEB_PORT", "7070")
	t.Setenv("TASKFLOW_API_URL", "http://staging:5000/api")

	cfg, err := loadConfig(cfgPath, flagOverrides{logLevel: "debug"})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WebPort != 7070 || cfg.APIBaseURL != "http://staging:5000/api" {
		t.Fatalf("expected env overrides for this run, got %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected flag log level, got %q", cfg.LogLevel)
	}

	saved, err := config.LoadFile(cfgPath)
	if err != nil {
		t.Fatalf("load saved file: %v", err)
	}
	if saved.WebPort != 8080 || saved.APIBaseURL != config.Default().APIBaseURL {
		t.Fatalf("expected env overrides to stay out of the file, got %+v", saved)
	}
	if saved.LogLevel != "debug" {
		t.Fatalf("expected flag to be saved, got %q", saved.LogLevel)
	}
	if saved.DBPath != filepath.Join(filepath.Dir(cfgPath), "taskflow.db") {
		t.Fatalf("expected default db path beside config, got %q", saved.DBPath)
	}
}
