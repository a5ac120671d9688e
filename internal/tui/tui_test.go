package tui

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/api"
	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/focus"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

type stubRemote struct {
	nextID    int
	completed []int64
	templates []model.TaskTemplate
}

func (r *stubRemote) ListTasks(context.Context, api.TaskQuery) (api.TaskPage, error) {
	return api.TaskPage{}, nil
}

func (r *stubRemote) CreateTask(context.Context, api.NewTask) (api.Created, error) {
	r.nextID++
	return api.Created{ID: strconv.Itoa(r.nextID), CreatedAt: time.Date(2026, 10, 16, 9, 0, r.nextID, 0, time.UTC)}, nil
}

func (r *stubRemote) UpdateTask(context.Context, int64, api.TaskUpdate) (model.Task, error) {
	return model.Task{}, nil
}

func (r *stubRemote) DeleteTask(context.Context, int64) error { return nil }

func (r *stubRemote) BulkComplete(_ context.Context, ids []int64) error {
	r.completed = append(r.completed, ids...)
	return nil
}

func (r *stubRemote) ListTemplates(context.Context) ([]model.TaskTemplate, error) {
	return r.templates, nil
}

func (r *stubRemote) ListLists(context.Context) ([]model.TaskList, error) { return nil, nil }

func (r *stubRemote) CreateList(_ context.Context, name, color string) (model.TaskList, error) {
	r.nextID++
	return model.TaskList{ID: strconv.Itoa(r.nextID), Name: name, Color: color}, nil
}

func (r *stubRemote) UpdateList(context.Context, int64, api.ListUpdate) (model.TaskList, error) {
	return model.TaskList{}, nil
}

func (r *stubRemote) DeleteList(context.Context, int64) error { return nil }

func (r *stubRemote) GetStats(context.Context) (model.UserStats, error) {
	return model.UserStats{TasksCompletedTotal: 1}, nil
}

func (r *stubRemote) ResetStreak(context.Context) error { return nil }

type manualScheduler struct{}

func (manualScheduler) Every(time.Duration, func()) func() { return func() {} }

func TestSaveFormCreatesTaskWithNewTag(t *testing.T) {
	ui, st := newTestUI(t)

	if err := ui.addTask(nil, nil); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if ui.form.fields[fieldList].Value != "Personal" {
		t.Fatalf("expected first list as default, got %q", ui.form.fields[fieldList].Value)
	}
	ui.form.fields[fieldTitle].Value = "Buy milk"
	ui.form.fields[fieldDue].Value = "2026-10-20"
	ui.form.fields[fieldTags].Value = "errands"

	if err := ui.saveForm(); err != nil {
		t.Fatalf("save form: %v", err)
	}

	tasks := st.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Title != "Buy milk" || task.ListID != "1" || task.DueDate != "2026-10-20" || task.Priority != model.PriorityMedium {
		t.Fatalf("unexpected task %+v", task)
	}
	tags := st.Tags()
	if len(tags) != 1 || tags[0].Name != "errands" {
		t.Fatalf("expected errands tag to be created, got %+v", tags)
	}
	if len(task.Tags) != 1 || task.Tags[0] != tags[0].ID {
		t.Fatalf("expected task to carry the new tag, got %v", task.Tags)
	}
}

func TestSaveFormRejectsInvalidInput(t *testing.T) {
	ui, st := newTestUI(t)

	if err := ui.addTask(nil, nil); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := ui.saveForm(); err == nil {
		t.Fatalf("expected missing title error")
	}

	ui.form.fields[fieldTitle].Value = "Dentist"
	ui.form.fields[fieldDue].Value = "next week"
	if err := ui.saveForm(); err == nil {
		t.Fatalf("expected due date error")
	}
	if len(st.Tasks()) != 0 {
		t.Fatalf("expected no task to be created")
	}
}

func TestEditFormUpdatesSelectedTask(t *testing.T) {
	ui, st := newTestUI(t)
	mustAddTask(t, st, store.TaskDraft{Title: "Draft report", ListID: "2"})
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.editTask(nil, nil); err != nil {
		t.Fatalf("edit task: %v", err)
	}
	ui.form.fields[fieldTitle].Value = "Final report"
	ui.form.index = fieldPriority
	ui.editField(gocui.KeySpace, 0, gocui.ModNone)
	if ui.form.fields[fieldPriority].Value != "high" {
		t.Fatalf("expected priority to cycle to high, got %q", ui.form.fields[fieldPriority].Value)
	}

	ui.form.index = fieldList
	ui.editField(gocui.KeySpace, 0, gocui.ModNone)
	if ui.form.fields[fieldList].Value != "Work" {
		t.Fatalf("expected list to stay fixed while editing, got %q", ui.form.fields[fieldList].Value)
	}

	if err := ui.saveForm(); err != nil {
		t.Fatalf("save form: %v", err)
	}
	task := st.Tasks()[0]
	if task.Title != "Final report" || task.Priority != model.PriorityHigh {
		t.Fatalf("unexpected task after edit %+v", task)
	}
}

func TestToggleCompleteAndCompletedFilter(t *testing.T) {
	ui, st := newTestUI(t)
	mustAddTask(t, st, store.TaskDraft{Title: "Water plants", ListID: "1"})
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.toggleComplete(nil, nil); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}
	if !st.Tasks()[0].Completed {
		t.Fatalf("expected task to be completed")
	}

	if err := ui.cycleCompletedFilter(nil, nil); err != nil {
		t.Fatalf("cycle filter: %v", err)
	}
	if ui.filter.Completed != model.CompletedIncomplete {
		t.Fatalf("expected incomplete filter, got %q", ui.filter.Completed)
	}
	if len(ui.tasks) != 0 {
		t.Fatalf("expected completed task to be hidden, got %d", len(ui.tasks))
	}

	if err := ui.clearFilters(nil, nil); err != nil {
		t.Fatalf("clear filters: %v", err)
	}
	if len(ui.tasks) != 1 {
		t.Fatalf("expected task to be visible again")
	}
}

func TestCompleteVisibleUsesBulkCall(t *testing.T) {
	ui, st := newTestUI(t)
	mustAddTask(t, st, store.TaskDraft{Title: "One", ListID: "1"})
	mustAddTask(t, st, store.TaskDraft{Title: "Two", ListID: "1"})
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.completeVisible(nil, nil); err != nil {
		t.Fatalf("complete visible: %v", err)
	}
	for _, task := range st.Tasks() {
		if !task.Completed {
			t.Fatalf("expected %q to be completed", task.Title)
		}
	}
	if ui.status != "completed 2 tasks" {
		t.Fatalf("unexpected status %q", ui.status)
	}
}

func TestDeleteTagRemovesTagAndFilter(t *testing.T) {
	ui, st := newTestUI(t)
	tag := st.AddTag(store.TagDraft{Name: "Work"})
	mustAddTask(t, st, store.TaskDraft{Title: "Tag cleanup", ListID: "1", Tags: []string{tag.ID}})

	ui.focus = viewTags
	ui.filter.TagIDs = []string{tag.ID}
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(ui.tags) != 1 {
		t.Fatalf("expected 1 tag entry, got %d", len(ui.tags))
	}
	ui.selectedTag = 0

	if err := ui.deleteTag(nil, nil); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	if len(st.Tags()) != 0 {
		t.Fatalf("expected tags to be deleted, got %d", len(st.Tags()))
	}
	if len(st.Tasks()[0].Tags) != 0 {
		t.Fatalf("expected task tags to be cleared")
	}
	if len(ui.filter.TagIDs) != 0 {
		t.Fatalf("expected filter tags to be cleared")
	}
}

func TestToggleListFilterOnlyInListsPane(t *testing.T) {
	ui, st := newTestUI(t)
	mustAddTask(t, st, store.TaskDraft{Title: "Personal errand", ListID: "1"})
	mustAddTask(t, st, store.TaskDraft{Title: "Standup", ListID: "2"})
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	ui.selectedList = 1
	if err := ui.toggleListFilter(nil, nil); err != nil {
		t.Fatalf("toggle list filter: %v", err)
	}
	if ui.filter.ListID != model.FilterAll {
		t.Fatalf("expected no change outside the lists pane")
	}

	ui.focus = viewLists
	if err := ui.toggleListFilter(nil, nil); err != nil {
		t.Fatalf("toggle list filter: %v", err)
	}
	if ui.filter.ListID != "2" || len(ui.tasks) != 1 || ui.tasks[0].Title != "Standup" {
		t.Fatalf("expected only Work tasks, got filter %q tasks %+v", ui.filter.ListID, ui.tasks)
	}
	if ui.lists[1].TaskCount != 1 {
		t.Fatalf("expected recounted list sizes, got %+v", ui.lists[1])
	}
}

func TestMoveTaskReordersWithinList(t *testing.T) {
	ui, st := newTestUI(t)
	mustAddTask(t, st, store.TaskDraft{Title: "First", ListID: "1"})
	mustAddTask(t, st, store.TaskDraft{Title: "Second", ListID: "1"})
	ui.filter.SortBy = model.SortByCreatedAt
	ui.filter.SortOrder = model.SortAsc
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	ui.selectedTask = 0

	if err := ui.moveTaskDown(nil, nil); err != nil {
		t.Fatalf("move task: %v", err)
	}
	for _, task := range st.Tasks() {
		if task.Title == "First" && task.Order != 1 {
			t.Fatalf("expected First at order 1, got %d", task.Order)
		}
		if task.Title == "Second" && task.Order != 0 {
			t.Fatalf("expected Second at order 0, got %d", task.Order)
		}
	}

	if err := ui.moveTaskDown(nil, nil); err != nil {
		t.Fatalf("move task at end: %v", err)
	}
}

func TestSaveAndApplyView(t *testing.T) {
	ui, _ := newTestUI(t)
	ui.views = newTestDB(t)

	ui.filter.Search = "report"
	ui.filter.Priority = string(model.PriorityHigh)
	if err := ui.saveView("Urgent reports"); err != nil {
		t.Fatalf("save view: %v", err)
	}
	if ui.activeView == nil || ui.activeView.Name != "Urgent reports" {
		t.Fatalf("expected active view, got %+v", ui.activeView)
	}
	if len(ui.saved) != 1 {
		t.Fatalf("expected 1 saved view, got %d", len(ui.saved))
	}

	if err := ui.clearFilters(nil, nil); err != nil {
		t.Fatalf("clear filters: %v", err)
	}
	ui.focus = viewViews
	if err := ui.applySelectedView(nil, nil); err != nil {
		t.Fatalf("apply view: %v", err)
	}
	if ui.filter.Search != "report" || ui.filter.Priority != "high" {
		t.Fatalf("expected saved filter to be restored, got %+v", ui.filter)
	}

	if err := ui.deleteSelectedView(nil, nil); err != nil {
		t.Fatalf("delete view: %v", err)
	}
	if len(ui.saved) != 0 || ui.activeView != nil {
		t.Fatalf("expected view to be removed")
	}
}

func TestSaveViewWithoutDatabase(t *testing.T) {
	ui, _ := newTestUI(t)
	if err := ui.openViewSave(nil, nil); err != nil {
		t.Fatalf("open view save: %v", err)
	}
	if ui.prompt != nil || ui.status != errNoViewStore.Error() {
		t.Fatalf("expected prompt to stay closed, got status %q", ui.status)
	}
}

func TestFocusCompleteMarksTaskCompleted(t *testing.T) {
	ui, st := newTestUI(t)
	mustAddTask(t, st, store.TaskDraft{Title: "Write essay", ListID: "1"})
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.focusSelectedTask(nil, nil); err != nil {
		t.Fatalf("focus task: %v", err)
	}
	if ui.focus != viewFocus || ui.timer.State().TaskID == "" {
		t.Fatalf("expected task attached and focus pane active")
	}

	if err := ui.completeFocusedTask(nil, nil); err != nil {
		t.Fatalf("complete focused task: %v", err)
	}
	if !st.Tasks()[0].Completed {
		t.Fatalf("expected task to be completed")
	}
	if ui.timer.State().TaskID != "" {
		t.Fatalf("expected timer to be detached")
	}
	if st.Stats().TasksCompletedTotal != 1 {
		t.Fatalf("expected stats refresh, got %+v", st.Stats())
	}

	if err := ui.completeFocusedTask(nil, nil); err != nil {
		t.Fatalf("complete without task: %v", err)
	}
	if ui.status != focus.ErrNoTask.Error() {
		t.Fatalf("expected no task status, got %q", ui.status)
	}
}

func TestSkipBreakOutsideBreakReportsStatus(t *testing.T) {
	ui, _ := newTestUI(t)
	if err := ui.skipBreak(nil, nil); err != nil {
		t.Fatalf("skip break: %v", err)
	}
	if ui.status != focus.ErrNotOnBreak.Error() {
		t.Fatalf("expected not on break status, got %q", ui.status)
	}
}

func TestToggleNotificationsPersists(t *testing.T) {
	ui, _ := newTestUI(t)
	settingsDB := newTestDB(t)
	ui.settingsDB = settingsDB

	if err := ui.toggleNotifications(nil, nil); err != nil {
		t.Fatalf("toggle notifications: %v", err)
	}
	if ui.notifyOn.Load() {
		t.Fatalf("expected notifications off")
	}
	saved, err := settingsDB.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.NotificationsEnabled {
		t.Fatalf("expected saved setting to be off")
	}
}

func TestCycleThemeRestylesAndPersists(t *testing.T) {
	ui, _ := newTestUI(t)
	settingsDB := newTestDB(t)
	ui.settingsDB = settingsDB

	if err := ui.cycleTheme(nil, nil); err != nil {
		t.Fatalf("cycle theme: %v", err)
	}
	if ui.settings.Theme != model.ThemeLight {
		t.Fatalf("expected light theme after system, got %q", ui.settings.Theme)
	}

	view := &gocui.View{}
	ui.applyViewStyle(view, true, true)
	if view.FrameColor != gocui.ColorBlue || view.SelBgColor != gocui.ColorCyan {
		t.Fatalf("expected light palette, got frame %v selection %v", view.FrameColor, view.SelBgColor)
	}

	saved, err := settingsDB.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.Theme != model.ThemeLight {
		t.Fatalf("expected saved theme light, got %q", saved.Theme)
	}

	_ = ui.cycleTheme(nil, nil)
	_ = ui.cycleTheme(nil, nil)
	if ui.settings.Theme != model.ThemeSystem {
		t.Fatalf("expected cycle back to system, got %q", ui.settings.Theme)
	}
}

func TestToggleSoundPersists(t *testing.T) {
	ui, _ := newTestUI(t)
	settingsDB := newTestDB(t)
	ui.settingsDB = settingsDB

	if err := ui.toggleSound(nil, nil); err != nil {
		t.Fatalf("toggle sound: %v", err)
	}
	if ui.settings.SoundEnabled {
		t.Fatalf("expected sound off")
	}
	saved, err := settingsDB.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.SoundEnabled {
		t.Fatalf("expected saved sound setting to be off")
	}
}

func TestTemplateWithoutListUsesSelectedList(t *testing.T) {
	remote := &stubRemote{nextID: 100, templates: []model.TaskTemplate{{ID: "1", Title: "Weekly review", Priority: model.PriorityLow}}}
	ui, st := newTestUIWithRemote(t, remote)
	if err := st.LoadTemplates(context.Background()); err != nil {
		t.Fatalf("load templates: %v", err)
	}
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	ui.selectedList = 1

	if err := ui.createFromSelectedTemplate(); err != nil {
		t.Fatalf("create from template: %v", err)
	}
	tasks := st.Tasks()
	if len(tasks) != 1 || tasks[0].ListID != ui.lists[1].ID {
		t.Fatalf("expected task in selected list %s, got %+v", ui.lists[1].ID, tasks)
	}

	ui.filter.ListID = "3"
	if err := ui.createFromSelectedTemplate(); err != nil {
		t.Fatalf("create from template: %v", err)
	}
	if got := st.Tasks()[1].ListID; got != "3" {
		t.Fatalf("expected filtered list to win, got %s", got)
	}
}

func TestCreateTagRejectsDuplicates(t *testing.T) {
	ui, st := newTestUI(t)
	if err := ui.createTag("home"); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := ui.createTag("HOME"); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if len(st.Tags()) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(st.Tags()))
	}
}

func TestComputeLayoutFillsBody(t *testing.T) {
	l := computeLayout(120, 40)
	if l.listsHeight+l.tagsHeight+l.viewsHeight != 40 {
		t.Fatalf("left column does not fill body: %+v", l)
	}
	if l.tasksHeight+l.focusHeight+l.detailsHeight != 40 {
		t.Fatalf("right column does not fill body: %+v", l)
	}
	if l.leftWidth < 24 {
		t.Fatalf("left column too narrow: %d", l.leftWidth)
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(0.5, 10); got != "[#####.....]" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := progressBar(2, 4); got != "[####]" {
		t.Fatalf("expected clamped bar, got %q", got)
	}
}

func newTestUI(t *testing.T) (*UI, *store.Store) {
	t.Helper()
	return newTestUIWithRemote(t, &stubRemote{nextID: 100})
}

func newTestUIWithRemote(t *testing.T, remote *stubRemote) (*UI, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(remote, store.WithLogger(logger))
	ui := newUI(Options{Store: st, Logger: logger})
	ui.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	ui.timer = focus.New(
		focus.WithScheduler(manualScheduler{}),
		focus.WithCompleteTask(ui.completeTask),
		focus.WithLogger(logger),
	)
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	return ui, st
}

func newTestDB(t *testing.T) *db.Store {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return db.NewStore(conn)
}

func mustAddTask(t *testing.T, st *store.Store, draft store.TaskDraft) model.Task {
	t.Helper()
	task, err := st.AddTask(context.Background(), draft)
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	return task
}
