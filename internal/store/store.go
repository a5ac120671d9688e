// Package store holds the authoritative in-memory copy of a TaskFlow session and
// mediates every mutation through the backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskflow/internal/api"
	"github.com/Joseda-hg/taskflow/internal/model"
)

var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyName        = errors.New("name is required")
	ErrNotFound         = errors.New("not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
)

const defaultPageSize = 1000

// Remote is the subset of the backend client the store depends on.
type Remote interface {
	ListTasks(ctx context.Context, query api.TaskQuery) (api.TaskPage, error)
	CreateTask(ctx context.Context, input api.NewTask) (api.Created, error)
	UpdateTask(ctx context.Context, id int64, update api.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	BulkComplete(ctx context.Context, ids []int64) error
	ListTemplates(ctx context.Context) ([]model.TaskTemplate, error)
	ListLists(ctx context.Context) ([]model.TaskList, error)
	CreateList(ctx context.Context, name, color string) (model.TaskList, error)
	UpdateList(ctx context.Context, id int64, update api.ListUpdate) (model.TaskList, error)
	DeleteList(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (model.UserStats, error)
	ResetStreak(ctx context.Context) error
}

// Saver persists exported snapshots after local changes.
type Saver interface {
	SaveSnapshot(ctx context.Context, payload []byte) error
}

type TaskDraft struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     model.Date
	ListID      string
	Tags        []string
}

// TaskPatch is a partial task update. Tags are merged locally only; the backend has no tag field.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	DueDate     *model.Date
	Completed   *bool
	Tags        *[]string
}

type ListDraft struct {
	Name  string
	Color string
	Icon  string
}

type ListPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

type TagDraft struct {
	Name  string
	Color string
}

type Store struct {
	mu sync.RWMutex
	// saveMu orders exports with their saves so the newest snapshot always wins.
	saveMu    sync.Mutex
	remote    Remote
	logger    *slog.Logger
	saver     Saver
	now       func() time.Time
	pageSize  int
	lang      language.Tag
	tasks     []model.Task
	lists     []model.TaskList
	tags      []model.Tag
	templates []model.TaskTemplate
	stats     model.UserStats
	err       error
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSaver(saver Saver) Option {
	return func(s *Store) { s.saver = saver }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithPageSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithCollator sets the language used to compare titles.
func WithCollator(tag language.Tag) Option {
	return func(s *Store) { s.lang = tag }
}

func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote:   remote,
		logger:   slog.Default(),
		now:      time.Now,
		pageSize: defaultPageSize,
		lang:     language.English,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetToDefaults()
	return s
}

// Initialize fetches lists, the first page of tasks and stats in parallel. Either
// all three are adopted or the session falls back to the default dataset.
func (s *Store) Initialize(ctx context.Context) error {
	var (
		lists []model.TaskList
		page  api.TaskPage
		stats model.UserStats
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		lists, err = s.remote.ListLists(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		page, err = s.remote.ListTasks(groupCtx, api.TaskQuery{Page: 1, Limit: s.pageSize})
		return err
	})
	group.Go(func() error {
		var err error
		stats, err = s.remote.GetStats(groupCtx)
		return err
	})

	if err := group.Wait(); err != nil {
		err = fmt.Errorf("initialize: %w", err)
		s.logger.Error("initialize failed, using default data", slog.Any("err", err))
		s.mu.Lock()
		s.resetToDefaults()
		s.err = err
		s.mu.Unlock()
		return err
	}

	if page.Pages > 1 {
		s.logger.Warn("backend has more tasks than one page, later pages are not loaded",
			slog.Int("total", page.Total),
			slog.Int("limit", page.Limit),
			slog.Int("pages", page.Pages),
		)
	}

	s.mu.Lock()
	s.lists = lists
	s.tasks = page.Tasks
	rankByList(s.tasks)
	s.tags = page.Tags
	if s.tags == nil {
		s.tags = []model.Tag{}
	}
	s.templates = []model.TaskTemplate{}
	s.stats = stats
	s.err = nil
	s.mu.Unlock()

	s.logger.Info("store initialized",
		slog.Int("lists", len(lists)),
		slog.Int("tasks", len(page.Tasks)),
		slog.Int("tags", len(page.Tags)),
	)
	s.persist(ctx)
	return nil
}

func (s *Store) AddTask(ctx context.Context, draft TaskDraft) (model.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("add task: %w", ErrEmptyTitle)
	}
	priority := draft.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return model.Task{}, fmt.Errorf("add task: invalid priority %q", priority)
	}

	s.mu.RLock()
	listID, remoteListID, err := s.resolveListID(draft.ListID)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn("add task rejected", slog.String("list_id", draft.ListID), slog.Any("err", err))
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}

	created, err := s.remote.CreateTask(ctx, api.NewTask{
		Title:       title,
		Description: draft.Description,
		Priority:    priority,
		DueDate:     draft.DueDate,
		ListID:      remoteListID,
	})
	if err != nil {
		s.logger.Error("create task failed", slog.Any("err", err))
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}

	now := s.now().UTC()
	createdAt := created.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	task := model.Task{
		ID:          created.ID,
		Title:       title,
		Description: draft.Description,
		Priority:    priority,
		DueDate:     draft.DueDate,
		ListID:      listID,
		CreatedAt:   createdAt,
		UpdatedAt:   now,
		Tags:        append([]string{}, draft.Tags...),
	}

	s.mu.Lock()
	task.Order = s.nextOrder(listID)
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.logger.Debug("task added", slog.String("id", task.ID), slog.String("list_id", listID))
	s.persist(ctx)
	return task.Clone(), nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, patch TaskPatch) error {
	remoteID, err := model.ParseRemoteID(id)
	if err != nil {
		s.logger.Warn("update task rejected", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("update task: %w", err)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("update task: %w", ErrEmptyTitle)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return fmt.Errorf("update task: invalid priority %q", *patch.Priority)
	}

	update := api.TaskUpdate{
		Title:       patch.Title,
		Description: patch.Description,
		Priority:    patch.Priority,
		DueDate:     patch.DueDate,
		Completed:   patch.Completed,
	}
	if _, err := s.remote.UpdateTask(ctx, remoteID, update); err != nil {
		s.logger.Error("update task failed", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("update task: %w", err)
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			applyTaskPatch(&s.tasks[i], patch)
			s.tasks[i].UpdatedAt = s.now().UTC()
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

func applyTaskPatch(task *model.Task, patch TaskPatch) {
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Tags != nil {
		task.Tags = append([]string{}, (*patch.Tags)...)
	}
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	remoteID, err := model.ParseRemoteID(id)
	if err != nil {
		s.logger.Warn("delete task rejected", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("delete task: %w", err)
	}
	if err := s.remote.DeleteTask(ctx, remoteID); err != nil {
		s.logger.Error("delete task failed", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("delete task: %w", err)
	}

	s.mu.Lock()
	s.tasks = filterTasks(s.tasks, func(task model.Task) bool { return task.ID != id })
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// ToggleComplete flips the completed flag of the task. Concurrent toggles of the same task are last-write-wins.
func (s *Store) ToggleComplete(ctx context.Context, id string) error {
	s.mu.RLock()
	index := s.taskIndex(id)
	var completed bool
	if index >= 0 {
		completed = s.tasks[index].Completed
	}
	s.mu.RUnlock()
	if index < 0 {
		return fmt.Errorf("toggle task %s: %w", id, ErrNotFound)
	}

	next := !completed
	return s.UpdateTask(ctx, id, TaskPatch{Completed: &next})
}

// CompleteTasks marks every task in ids completed with a single backend call.
func (s *Store) CompleteTasks(ctx context.Context, ids []string) error {
	remoteIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		remoteID, err := model.ParseRemoteID(id)
		if err != nil {
			return fmt.Errorf("complete tasks: %w", err)
		}
		remoteIDs = append(remoteIDs, remoteID)
	}
	if len(remoteIDs) == 0 {
		return nil
	}
	if err := s.remote.BulkComplete(ctx, remoteIDs); err != nil {
		s.logger.Error("bulk complete failed", slog.Int("count", len(ids)), slog.Any("err", err))
		return fmt.Errorf("complete tasks: %w", err)
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	now := s.now().UTC()
	s.mu.Lock()
	for i := range s.tasks {
		if _, ok := wanted[s.tasks[i].ID]; ok {
			s.tasks[i].Completed = true
			s.tasks[i].UpdatedAt = now
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// ReorderTasks moves a task within listID and renumbers that list's order values 0..n-1.
// The new order lives only in this session.
func (s *Store) ReorderTasks(listID string, from, to int) error {
	s.mu.Lock()
	positions := make([]int, 0)
	for i, task := range s.tasks {
		if task.ListID == listID {
			positions = append(positions, i)
		}
	}
	if from < 0 || from >= len(positions) || to < 0 || to >= len(positions) {
		s.mu.Unlock()
		return fmt.Errorf("reorder list %s: %w", listID, ErrIndexOutOfRange)
	}

	ordered := make([]model.Task, len(positions))
	for i, pos := range positions {
		ordered[i] = s.tasks[pos]
	}
	sortByOrder(ordered)

	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]model.Task{moved}, ordered[to:]...)...)

	rank := make(map[string]int, len(ordered))
	for i, task := range ordered {
		rank[task.ID] = i
	}
	for _, pos := range positions {
		s.tasks[pos].Order = rank[s.tasks[pos].ID]
	}
	s.mu.Unlock()

	s.persist(context.Background())
	return nil
}

func (s *Store) AddList(ctx context.Context, draft ListDraft) (model.TaskList, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return model.TaskList{}, fmt.Errorf("add list: %w", ErrEmptyName)
	}
	color := draft.Color
	if color == "" {
		color = defaultListColor
	}

	created, err := s.remote.CreateList(ctx, name, color)
	if err != nil {
		s.logger.Error("create list failed", slog.Any("err", err))
		return model.TaskList{}, fmt.Errorf("add list: %w", err)
	}

	list := model.TaskList{
		ID:        created.ID,
		Name:      name,
		Color:     color,
		Icon:      draft.Icon,
		CreatedAt: created.CreatedAt,
	}
	if list.Icon == "" {
		list.Icon = created.Icon
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	s.lists = append(s.lists, list)
	s.mu.Unlock()

	s.persist(ctx)
	return list, nil
}

func (s *Store) UpdateList(ctx context.Context, id string, patch ListPatch) error {
	remoteID, err := model.ParseRemoteID(id)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("update list: %w", ErrEmptyName)
	}
	if _, err := s.remote.UpdateList(ctx, remoteID, api.ListUpdate{Name: patch.Name, Color: patch.Color}); err != nil {
		s.logger.Error("update list failed", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("update list: %w", err)
	}

	s.mu.Lock()
	for i := range s.lists {
		if s.lists[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.lists[i].Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Color != nil {
			s.lists[i].Color = *patch.Color
		}
		if patch.Icon != nil {
			s.lists[i].Icon = *patch.Icon
		}
		break
	}
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// DeleteList removes the list and every task that references it.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	remoteID, err := model.ParseRemoteID(id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if err := s.remote.DeleteList(ctx, remoteID); err != nil {
		s.logger.Error("delete list failed", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("delete list: %w", err)
	}

	s.mu.Lock()
	before := len(s.tasks)
	s.lists = filterLists(s.lists, func(list model.TaskList) bool { return list.ID != id })
	s.tasks = filterTasks(s.tasks, func(task model.Task) bool { return task.ListID != id })
	removed := before - len(s.tasks)
	s.mu.Unlock()

	s.logger.Debug("list deleted", slog.String("id", id), slog.Int("tasks_removed", removed))
	s.persist(ctx)
	return nil
}

// AddTag creates a tag locally; the backend exposes no tag endpoint.
func (s *Store) AddTag(draft TagDraft) model.Tag {
	tag := model.Tag{ID: newLocalID(), Name: strings.TrimSpace(draft.Name), Color: draft.Color}
	if tag.Color == "" {
		tag.Color = defaultTagColor
	}

	s.mu.Lock()
	s.tags = append(s.tags, tag)
	s.mu.Unlock()

	s.persist(context.Background())
	return tag
}

// DeleteTag removes the tag and strips it from every task. It reports whether the tag existed.
func (s *Store) DeleteTag(id string) bool {
	s.mu.Lock()
	before := len(s.tags)
	s.tags = filterTagsByID(s.tags, id)
	found := len(s.tags) != before
	for i := range s.tasks {
		if !s.tasks[i].HasTag(id) {
			continue
		}
		kept := make([]string, 0, len(s.tasks[i].Tags))
		for _, tagID := range s.tasks[i].Tags {
			if tagID != id {
				kept = append(kept, tagID)
			}
		}
		s.tasks[i].Tags = kept
	}
	s.mu.Unlock()

	s.persist(context.Background())
	return found
}

// CreateFromTemplate instantiates a template as a new task due dueOffset days from today.
func (s *Store) CreateFromTemplate(ctx context.Context, templateID string) (model.Task, error) {
	return s.CreateFromTemplateIn(ctx, templateID, "")
}

// CreateFromTemplateIn is CreateFromTemplate with a list used when the template
// names none. The backend's template listing carries no list.
func (s *Store) CreateFromTemplateIn(ctx context.Context, templateID, fallbackListID string) (model.Task, error) {
	s.mu.RLock()
	var (
		template model.TaskTemplate
		found    bool
	)
	for _, candidate := range s.templates {
		if candidate.ID == templateID {
			template, found = candidate, true
			break
		}
	}
	s.mu.RUnlock()
	if !found {
		return model.Task{}, fmt.Errorf("create from template %s: %w", templateID, ErrTemplateNotFound)
	}

	draft := TaskDraft{
		Title:       template.Title,
		Description: template.Description,
		Priority:    template.Priority,
		ListID:      template.ListID,
		Tags:        []string{},
	}
	if strings.TrimSpace(draft.ListID) == "" {
		draft.ListID = fallbackListID
	}
	if template.DueOffset != 0 {
		draft.DueDate = model.DateOf(s.now()).AddDays(template.DueOffset)
	}
	return s.AddTask(ctx, draft)
}

// LoadTemplates replaces the local templates with the backend's.
func (s *Store) LoadTemplates(ctx context.Context) error {
	templates, err := s.remote.ListTemplates(ctx)
	if err != nil {
		s.logger.Error("load templates failed", slog.Any("err", err))
		return fmt.Errorf("load templates: %w", err)
	}

	s.mu.Lock()
	changed := !slices.Equal(s.templates, templates)
	s.templates = templates
	s.mu.Unlock()

	if changed {
		s.persist(ctx)
	}
	return nil
}

func (s *Store) RefreshStats(ctx context.Context) error {
	stats, err := s.remote.GetStats(ctx)
	if err != nil {
		s.logger.Error("refresh stats failed", slog.Any("err", err))
		return fmt.Errorf("refresh stats: %w", err)
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

func (s *Store) ResetStreak(ctx context.Context) error {
	if err := s.remote.ResetStreak(ctx); err != nil {
		s.logger.Error("reset streak failed", slog.Any("err", err))
		return fmt.Errorf("reset streak: %w", err)
	}

	s.mu.Lock()
	s.stats.CurrentStreak = 0
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// RecountLists recomputes the cached TaskCount of every list.
func (s *Store) RecountLists() {
	s.mu.Lock()
	counts := make(map[string]int, len(s.lists))
	for _, task := range s.tasks {
		counts[task.ListID]++
	}
	for i := range s.lists {
		s.lists[i].TaskCount = counts[s.lists[i].ID]
	}
	s.mu.Unlock()
}

// FilteredTasks derives the visible task sequence. It never modifies the store.
func (s *Store) FilteredTasks(filter model.FilterState) []model.Task {
	return Apply(s.Tasks(), filter, newCollator(s.lang))
}

// Err reports the failure recorded by the last Initialize, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := s.taskIndex(id)
	if index < 0 {
		return model.Task{}, false
	}
	return s.tasks[index].Clone(), true
}

func (s *Store) Lists() []model.TaskList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TaskList{}, s.lists...)
}

func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Tag{}, s.tags...)
}

func (s *Store) Templates() []model.TaskTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TaskTemplate{}, s.templates...)
}

func (s *Store) Stats() model.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Snapshot returns a deep copy of the whole session state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		Tasks:     cloneTasks(s.tasks),
		Lists:     append([]model.TaskList{}, s.lists...),
		Tags:      append([]model.Tag{}, s.tags...),
		Templates: append([]model.TaskTemplate{}, s.templates...),
		Stats:     s.stats,
	}
}

// resolveListID maps a domain list id to its backend id. Non-numeric ids resolve
// through a case-insensitive name match against known lists. Callers hold s.mu.
func (s *Store) resolveListID(id string) (string, int64, error) {
	if remoteID, err := model.ParseRemoteID(id); err == nil {
		return model.FormatRemoteID(remoteID), remoteID, nil
	}
	needle := strings.TrimSpace(id)
	for _, list := range s.lists {
		if !strings.EqualFold(list.Name, needle) {
			continue
		}
		if remoteID, err := model.ParseRemoteID(list.ID); err == nil {
			return list.ID, remoteID, nil
		}
	}
	_, err := model.ParseRemoteID(id)
	return "", 0, err
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextOrder is one past the highest order in the list, so it never collides after deletes.
func (s *Store) nextOrder(listID string) int {
	next := 0
	for _, task := range s.tasks {
		if task.ListID == listID && task.Order >= next {
			next = task.Order + 1
		}
	}
	return next
}

// rankByList numbers tasks 0..n-1 within each list in slice order.
func rankByList(tasks []model.Task) {
	next := make(map[string]int)
	for i := range tasks {
		tasks[i].Order = next[tasks[i].ListID]
		next[tasks[i].ListID]++
	}
}

// persist hands the current snapshot to the saver. Failures are logged only.
func (s *Store) persist(ctx context.Context) {
	if s.saver == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	payload, err := s.ExportSnapshot()
	if err != nil {
		s.logger.Error("encode snapshot failed", slog.Any("err", err))
		return
	}
	if err := s.saver.SaveSnapshot(context.WithoutCancel(ctx), payload); err != nil {
		s.logger.Error("autosave failed", slog.Any("err", err))
	}
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, task := range tasks {
		out[i] = task.Clone()
	}
	return out
}

func filterTasks(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if keep(task) {
			out = append(out, task)
		}
	}
	return out
}

func filterLists(lists []model.TaskList, keep func(model.TaskList) bool) []model.TaskList {
	out := make([]model.TaskList, 0, len(lists))
	for _, list := range lists {
		if keep(list) {
			out = append(out, list)
		}
	}
	return out
}

func filterTagsByID(tags []model.Tag, id string) []model.Tag {
	out := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.ID != id {
			out = append(out, tag)
		}
	}
	return out
}
