package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))
	taskTemplate  = template.Must(template.ParseFS(templateFS, "templates/task.tmpl"))
)

const maxImportBytes = 10 << 20

// History exposes saved snapshot metadata.
type History interface {
	ListSnapshots(ctx context.Context) ([]db.Snapshot, error)
}

type Server struct {
	store   *store.Store
	history History
	logger  *slog.Logger
}

type taskRow struct {
	Task      model.Task `json:"task"`
	ListName  string     `json:"listName"`
	ListColor string     `json:"listColor"`
	TagNames  []string   `json:"tagNames"`
}

// NewServer serves views over st. history may be nil.
func NewServer(st *store.Store, history History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: st, history: history, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/tasks/", s.taskHandler)
	mux.HandleFunc("/api/tasks", s.apiTasksHandler)
	mux.HandleFunc("/api/tasks/", s.apiTaskHandler)
	mux.HandleFunc("/api/lists", s.apiListsHandler)
	mux.HandleFunc("/api/tags", s.apiTagsHandler)
	mux.HandleFunc("/api/stats", s.apiStatsHandler)
	mux.HandleFunc("/api/export", s.apiExportHandler)
	mux.HandleFunc("/api/import", s.apiImportHandler)
	mux.HandleFunc("/api/snapshots", s.apiSnapshotsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("web request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	filter, err := filterFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tasks := s.store.FilteredTasks(filter)

	data := struct {
		Total      int
		Rows       []taskRow
		Filter     model.FilterState
		Lists      []model.TaskList
		Stats      model.UserStats
		SortFields []model.SortBy
	}{
		Total:      len(tasks),
		Rows:       s.buildTaskRows(tasks),
		Filter:     filter,
		Lists:      s.store.Lists(),
		Stats:      s.store.Stats(),
		SortFields: []model.SortBy{model.SortByCreatedAt, model.SortByDueDate, model.SortByPriority, model.SortByTitle},
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

// buildTaskRows resolves list and tag names for display. Unknown references render as their raw id.
func (s *Server) buildTaskRows(tasks []model.Task) []taskRow {
	lists := make(map[string]model.TaskList)
	for _, list := range s.store.Lists() {
		lists[list.ID] = list
	}
	tags := make(map[string]string)
	for _, tag := range s.store.Tags() {
		tags[tag.ID] = tag.Name
	}

	rows := make([]taskRow, 0, len(tasks))
	for _, task := range tasks {
		row := taskRow{Task: task, ListName: task.ListID, TagNames: make([]string, 0, len(task.Tags))}
		if list, ok := lists[task.ListID]; ok {
			row.ListName = list.Name
			row.ListColor = list.Color
		}
		for _, id := range task.Tags {
			if name, ok := tags[id]; ok {
				row.TagNames = append(row.TagNames, name)
			} else {
				row.TagNames = append(row.TagNames, id)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) taskHandler(w http.ResponseWriter, r *http.Request) {
	row, err := s.lookupTask(r.URL.Path, "/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	data := struct{ Row taskRow }{Row: row}
	if err := taskTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, s.store.FilteredTasks(filter))
}

func (s *Server) apiTaskHandler(w http.ResponseWriter, r *http.Request) {
	row, err := s.lookupTask(r.URL.Path, "/api/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, row)
}

func (s *Server) lookupTask(path, prefix string) (taskRow, error) {
	id, err := parseID(path, prefix)
	if err != nil {
		return taskRow{}, err
	}
	task, ok := s.store.Task(id)
	if !ok {
		return taskRow{}, fmt.Errorf("task %s not found", id)
	}
	return s.buildTaskRows([]model.Task{task})[0], nil
}

func (s *Server) apiListsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Lists())
}

func (s *Server) apiTagsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Tags())
}

func (s *Server) apiStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Stats())
}

func (s *Server) apiExportHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := s.store.ExportSnapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	filename := fmt.Sprintf("taskflow-%s.json", time.Now().Format(model.DateLayout))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(payload)
}

func (s *Server) apiImportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.store.ImportSnapshot(payload) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid snapshot"))
		return
	}
	writeJSON(w, map[string]bool{"imported": true})
}

func (s *Server) apiSnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, []db.Snapshot{})
		return
	}
	snapshots, err := s.history.ListSnapshots(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	type entry struct {
		ID        int64     `json:"id"`
		Summary   string    `json:"summary"`
		CreatedAt time.Time `json:"createdAt"`
	}
	entries := make([]entry, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entries = append(entries, entry{ID: snapshot.ID, Summary: snapshot.Summary, CreatedAt: snapshot.CreatedAt})
	}
	writeJSON(w, entries)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status       string `json:"status"`
		Tasks        int    `json:"tasks"`
		SessionError string `json:"sessionError,omitempty"`
	}{Status: "ok", Tasks: len(s.store.Tasks())}
	if err := s.store.Err(); err != nil {
		payload.Status = "degraded"
		payload.SessionError = err.Error()
	}
	writeJSON(w, payload)
}

func filterFromRequest(r *http.Request) (model.FilterState, error) {
	query := r.URL.Query()
	filter := model.DefaultFilter()
	filter.Search = strings.TrimSpace(query.Get("search"))

	if value := strings.TrimSpace(query.Get("priority")); value != "" && value != model.FilterAll {
		priority, err := model.ParsePriority(value)
		if err != nil {
			return model.FilterState{}, err
		}
		filter.Priority = string(priority)
	}

	completed, err := model.ParseCompletedFilter(strings.TrimSpace(query.Get("completed")))
	if err != nil {
		return model.FilterState{}, err
	}
	filter.Completed = completed

	if value := strings.TrimSpace(query.Get("list_id")); value != "" {
		filter.ListID = value
	}

	if value := strings.TrimSpace(query.Get("tags")); value != "" {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				filter.TagIDs = append(filter.TagIDs, trimmed)
			}
		}
	}

	if filter.SortBy, err = model.ParseSortBy(strings.TrimSpace(query.Get("sort_by"))); err != nil {
		return model.FilterState{}, err
	}
	if filter.SortOrder, err = model.ParseSortOrder(strings.TrimSpace(query.Get("sort_order"))); err != nil {
		return model.FilterState{}, err
	}
	return filter, nil
}

func parseID(path, prefix string) (string, error) {
	if !strings.HasPrefix(path, prefix) {
		return "", fmt.Errorf("invalid path")
	}
	value := strings.TrimPrefix(path, prefix)
	value = strings.Trim(value, "/")
	if value == "" {
		return "", fmt.Errorf("missing id")
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
