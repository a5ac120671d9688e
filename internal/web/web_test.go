package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

const fixture = `{
  "tasks": [
    {"id": "1", "title": "Write proposal", "completed": false, "priority": "high", "listId": "2", "createdAt": "2026-10-01T12:00:00Z", "updatedAt": "2026-10-01T12:00:00Z", "tags": ["9"], "order": 0},
    {"id": "2", "title": "Buy groceries", "description": "milk", "completed": true, "priority": "low", "listId": "1", "createdAt": "2026-10-02T12:00:00Z", "updatedAt": "2026-10-02T12:00:00Z", "tags": [], "order": 0},
    {"id": "3", "title": "Dentist", "completed": false, "priority": "medium", "dueDate": "2026-10-25", "listId": "1", "createdAt": "2026-10-03T12:00:00Z", "updatedAt": "2026-10-03T12:00:00Z", "tags": [], "order": 1}
  ],
  "lists": [
    {"id": "1", "name": "Personal", "color": "#10b981", "icon": "user", "taskCount": 2, "createdAt": "2026-10-01T00:00:00Z"},
    {"id": "2", "name": "Work", "color": "#3b82f6", "icon": "briefcase", "taskCount": 1, "createdAt": "2026-10-01T00:00:00Z"}
  ],
  "tags": [{"id": "9", "name": "urgent", "color": "#ef4444"}],
  "templates": [],
  "stats": {"currentStreak": 3, "longestStreak": 5, "tasksCompletedToday": 1, "tasksCompletedTotal": 12, "lastCompletedDate": "2026-10-16"}
}`

func TestAPITasksHonoursFilterParams(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?completed=incomplete&list_id=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var tasks []model.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "3" {
		t.Fatalf("expected only task 3, got %+v", tasks)
	}
}

func TestAPITasksSortsByTitle(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?sort_by=title&sort_order=asc", nil))

	var tasks []model.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) != 3 || tasks[0].Title != "Buy groceries" || tasks[2].Title != "Write proposal" {
		t.Fatalf("unexpected order %+v", tasks)
	}
}

func TestAPITasksRejectsBadParams(t *testing.T) {
	server := newTestServer(t, nil)

	for _, target := range []string{"/api/tasks?priority=urgent", "/api/tasks?sort_by=size", "/api/tasks?completed=maybe"} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestAPITaskResolvesNames(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var row taskRow
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatalf("decode row: %v", err)
	}
	if row.ListName != "Work" || len(row.TagNames) != 1 || row.TagNames[0] != "urgent" {
		t.Fatalf("unexpected row %+v", row)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/404", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIndexRendersTasks(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?search=dent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Dentist") || strings.Contains(body, "Write proposal") {
		t.Fatalf("expected only Dentist in index, got %s", body)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/3", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "2026-10-25") {
		t.Fatalf("expected task page with due date, got %d", rec.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "taskflow-") {
		t.Fatalf("expected attachment header, got %q", rec.Header().Get("Content-Disposition"))
	}
	exported := rec.Body.String()

	other := newTestServer(t, nil)
	rec = httptest.NewRecorder()
	other.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(exported)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected import to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	other.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(`{"tasks": []}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for partial snapshot, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	other.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStatsAndHealth(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats model.UserStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TasksCompletedTotal != 12 {
		t.Fatalf("expected 12 completed, got %d", stats.TasksCompletedTotal)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("expected ok health, got %s", rec.Body.String())
	}
}

func TestSnapshotsListsHistory(t *testing.T) {
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()
	history := db.NewStore(database)
	if err := history.SaveSnapshot(context.Background(), []byte(fixture)); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	server := newTestServer(t, history)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots", nil))

	var entries []struct {
		ID        int64     `json:"id"`
		Summary   string    `json:"summary"`
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode snapshots: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Summary, "created:") {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func newTestServer(t *testing.T, history History) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(nil, store.WithLogger(logger))
	if !st.ImportSnapshot([]byte(fixture)) {
		t.Fatalf("import fixture")
	}
	return NewServer(st, history, logger)
}
