package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/model"
)

var ErrNoSnapshot = errors.New("no snapshot saved")

const defaultKeep = 20

type Store struct {
	DB *sql.DB
	// Keep is the number of snapshots retained; older ones are pruned on save.
	Keep int
	now  func() time.Time
}

type Snapshot struct {
	ID        int64
	Payload   []byte
	Summary   string
	CreatedAt time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Keep: defaultKeep, now: time.Now}
}

// SaveSnapshot records payload as the newest snapshot along with a summary of
// what changed since the previous one. A payload identical to the newest
// snapshot is not recorded again.
func (s *Store) SaveSnapshot(ctx context.Context, payload []byte) error {
	after, err := countSnapshot(payload)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	summary := formatCreatedSummary(after)
	previous, err := s.LatestSnapshot(ctx)
	switch {
	case err == nil && bytes.Equal(previous.Payload, payload):
		return nil
	case err == nil:
		before, countErr := countSnapshot(previous.Payload)
		if countErr == nil {
			summary = formatSnapshotDiff(before, after)
		}
	case !errors.Is(err, ErrNoSnapshot):
		return fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (payload, summary, created_at) VALUES (?, ?, ?)",
		string(payload), summary, formatTime(s.now()),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	keep := s.Keep
	if keep <= 0 {
		keep = defaultKeep
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)",
		keep,
	); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return tx.Commit()
}

func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, payload, summary, created_at FROM snapshots ORDER BY id DESC LIMIT 1")
	return scanSnapshot(row)
}

func (s *Store) GetSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, payload, summary, created_at FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// ListSnapshots returns snapshot metadata, newest first. Payloads are not loaded.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, summary, created_at FROM snapshots ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var (
			snapshot  Snapshot
			createdAt string
		)
		if err := rows.Scan(&snapshot.ID, &snapshot.Summary, &createdAt); err != nil {
			return nil, err
		}
		if snapshot.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	values := map[string]string{
		"theme":                 string(settings.Theme),
		"sound_enabled":         strconv.FormatBool(settings.SoundEnabled),
		"notifications_enabled": strconv.FormatBool(settings.NotificationsEnabled),
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range values {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value,
		); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// LoadSettings overlays stored values on model.DefaultSettings.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	rows, err := s.DB.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return model.Settings{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return model.Settings{}, err
		}
		switch key {
		case "theme":
			switch theme := model.Theme(value); theme {
			case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
				settings.Theme = theme
			}
		case "sound_enabled":
			if parsed, err := strconv.ParseBool(value); err == nil {
				settings.SoundEnabled = parsed
			}
		case "notifications_enabled":
			if parsed, err := strconv.ParseBool(value); err == nil {
				settings.NotificationsEnabled = parsed
			}
		}
	}
	return settings, rows.Err()
}

func (s *Store) SaveView(ctx context.Context, view model.View) (model.View, error) {
	name := strings.TrimSpace(view.Name)
	if name == "" {
		return model.View{}, fmt.Errorf("view name is required")
	}
	payload, err := json.Marshal(view.Filter)
	if err != nil {
		return model.View{}, err
	}
	now := formatTime(s.now())

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO views (name, filter_json, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET filter_json = excluded.filter_json, updated_at = excluded.updated_at`,
		name, string(payload), now, now,
	); err != nil {
		return model.View{}, fmt.Errorf("save view %s: %w", name, err)
	}
	return s.GetViewByName(ctx, name)
}

func (s *Store) ListViews(ctx context.Context) ([]model.View, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, name, filter_json, created_at, updated_at FROM views ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []model.View{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

func (s *Store) GetViewByName(ctx context.Context, name string) (model.View, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, name, filter_json, created_at, updated_at FROM views WHERE name = ?", strings.TrimSpace(name))
	return scanView(row)
}

func (s *Store) DeleteView(ctx context.Context, viewID int64) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM views WHERE id = ?", viewID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var (
		snapshot  Snapshot
		payload   string
		createdAt string
	)
	if err := row.Scan(&snapshot.ID, &payload, &snapshot.Summary, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, err
	}
	snapshot.Payload = []byte(payload)
	var err error
	if snapshot.CreatedAt, err = parseTime(createdAt); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

func scanView(row scanner) (model.View, error) {
	var (
		view                 model.View
		filterJSON           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&view.ID, &view.Name, &filterJSON, &createdAt, &updatedAt); err != nil {
		return model.View{}, err
	}
	if err := json.Unmarshal([]byte(filterJSON), &view.Filter); err != nil {
		return model.View{}, fmt.Errorf("parse view %s: %w", view.Name, err)
	}
	var err error
	if view.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.View{}, err
	}
	if view.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.View{}, err
	}
	return view, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}

type snapshotCounts struct {
	Tasks     int
	Completed int
	Lists     int
	Tags      int
	Templates int
}

func countSnapshot(payload []byte) (snapshotCounts, error) {
	var snapshot model.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return snapshotCounts{}, fmt.Errorf("parse snapshot: %w", err)
	}
	counts := snapshotCounts{
		Tasks:     len(snapshot.Tasks),
		Lists:     len(snapshot.Lists),
		Tags:      len(snapshot.Tags),
		Templates: len(snapshot.Templates),
	}
	for _, task := range snapshot.Tasks {
		if task.Completed {
			counts.Completed++
		}
	}
	return counts, nil
}

func formatCreatedSummary(counts snapshotCounts) string {
	return fmt.Sprintf("created: tasks=%d completed=%d lists=%d tags=%d templates=%d",
		counts.Tasks, counts.Completed, counts.Lists, counts.Tags, counts.Templates)
}

func formatSnapshotDiff(before, after snapshotCounts) string {
	changes := []string{}
	if before.Tasks != after.Tasks {
		changes = append(changes, formatChange("tasks", before.Tasks, after.Tasks))
	}
	if before.Completed != after.Completed {
		changes = append(changes, formatChange("completed", before.Completed, after.Completed))
	}
	if before.Lists != after.Lists {
		changes = append(changes, formatChange("lists", before.Lists, after.Lists))
	}
	if before.Tags != after.Tags {
		changes = append(changes, formatChange("tags", before.Tags, after.Tags))
	}
	if before.Templates != after.Templates {
		changes = append(changes, formatChange("templates", before.Templates, after.Templates))
	}

	if len(changes) == 0 {
		return "updated: no count changes"
	}
	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field string, before, after int) string {
	return fmt.Sprintf("%s: %d -> %d", field, before, after)
}
