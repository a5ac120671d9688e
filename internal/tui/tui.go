package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/focus"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

const (
	viewHeader    = "header"
	viewFooter    = "footer"
	viewTasks     = "tasks"
	viewLists     = "lists"
	viewTags      = "tags"
	viewViews     = "views"
	viewDetails   = "details"
	viewFocus     = "focus"
	viewSearch    = "search"
	viewForm      = "form"
	viewHelp      = "help"
	viewPrompt    = "prompt"
	viewTemplates = "templates"
)

const requestTimeout = 15 * time.Second

// ViewStore persists named filters.
type ViewStore interface {
	SaveView(ctx context.Context, view model.View) (model.View, error)
	ListViews(ctx context.Context) ([]model.View, error)
	DeleteView(ctx context.Context, viewID int64) error
}

// SettingsStore persists user preferences.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
}

type Options struct {
	Store *store.Store
	// Views and Settings may be nil; saved views and preference changes are then unavailable.
	Views    ViewStore
	Settings SettingsStore
	Logger   *slog.Logger
}

type UI struct {
	store       *store.Store
	views       ViewStore
	settingsDB  SettingsStore
	timer       *focus.Timer
	gui         *gocui.Gui
	logger      *slog.Logger
	now         func() time.Time
	settings    model.Settings
	notifyOn    atomic.Bool
	mainLoopRun atomic.Bool

	filter     model.FilterState
	activeView *model.View

	tasks     []model.Task
	lists     []model.TaskList
	tags      []tagCountEntry
	saved     []model.View
	templates []model.TaskTemplate
	tagByID   map[string]string
	listByID  map[string]model.TaskList

	selectedTask     int
	selectedList     int
	selectedTag      int
	selectedView     int
	selectedTemplate int
	focus            string

	form            *formState
	formEditor      *formEditor
	formTagIndex    int
	prompt          *promptState
	searchActive    bool
	helpActive      bool
	templatesActive bool
	status          string
}

type formState struct {
	taskID string
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

// promptState backs the single-line input popup used for tags, lists and view names.
type promptState struct {
	title  string
	value  string
	submit func(value string) error
}

func newUI(opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ui := &UI{
		store:      opts.Store,
		views:      opts.Views,
		settingsDB: opts.Settings,
		logger:     logger,
		now:        time.Now,
		settings:   model.DefaultSettings(),
		filter:     model.DefaultFilter(),
		focus:      viewTasks,
	}
	ui.notifyOn.Store(ui.settings.NotificationsEnabled)
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func Run(opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(opts)
	ui.gui = gui
	ui.loadSettings()
	ui.timer = focus.New(
		focus.WithOnChange(func(focus.State) { ui.redraw() }),
		focus.WithCompleteTask(ui.completeTask),
		focus.WithNotifier(focus.NotifierFunc{Allowed: ui.notifyOn.Load, Send: ui.notify}),
		focus.WithLogger(ui.logger),
	)
	defer ui.timer.Stop()

	gui.Mouse = true
	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	ui.mainLoopRun.Store(true)
	defer ui.mainLoopRun.Store(false)
	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

// redraw schedules a layout pass from any goroutine.
func (u *UI) redraw() {
	if u.gui == nil || !u.mainLoopRun.Load() {
		return
	}
	u.gui.Update(func(*gocui.Gui) error { return nil })
}

func (u *UI) notify(title, body string) error {
	if u.gui == nil || !u.mainLoopRun.Load() {
		return nil
	}
	u.gui.Update(func(*gocui.Gui) error {
		u.status = fmt.Sprintf("%s %s", title, body)
		if u.settings.SoundEnabled && gocui.Screen != nil {
			_ = gocui.Screen.Beep()
		}
		return nil
	})
	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	type binding struct {
		view    string
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}

	bindings := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", 'g', u.clearFilters},
		{"", 'a', u.addTask},
		{"", 'e', u.editTask},
		{"", 'd', u.deleteTask},
		{"", 'x', u.toggleComplete},
		{"", 'X', u.completeVisible},
		{"", 'J', u.moveTaskDown},
		{"", 'K', u.moveTaskUp},
		{"", 't', u.openTemplates},
		{"", '/', u.startSearch},
		{"", 'p', u.cyclePriorityFilter},
		{"", 'c', u.cycleCompletedFilter},
		{"", 'o', u.cycleSort},
		{"", 'O', u.toggleSortOrder},
		{"", 'w', u.openViewSave},
		{"", 'S', u.resetStreak},
		{"", 'N', u.toggleNotifications},
		{"", 'B', u.toggleSound},
		{"", 'T', u.cycleTheme},
		{"", 'f', u.focusSelectedTask},
		{"", 's', u.toggleTimer},
		{"", 'R', u.resetTimer},
		{"", 'b', u.skipBreak},
		{"", 'C', u.completeFocusedTask},
		{"", 'F', u.closeFocus},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", '1', u.focusPane(viewTasks)},
		{"", '2', u.focusPane(viewLists)},
		{"", '3', u.focusPane(viewTags)},
		{"", '4', u.focusPane(viewViews)},
		{"", '5', u.focusPane(viewDetails)},
		{"", '6', u.focusPane(viewFocus)},
		{viewLists, gocui.KeySpace, u.toggleListFilter},
		{viewLists, gocui.KeyEnter, u.toggleListFilter},
		{viewLists, 'a', u.openListCreate},
		{viewLists, 'e', u.openListRename},
		{viewLists, 'd', u.deleteList},
		{viewTags, gocui.KeySpace, u.toggleTagFilter},
		{viewTags, gocui.KeyEnter, u.toggleTagFilter},
		{viewTags, 'a', u.openTagCreate},
		{viewTags, 'd', u.deleteTag},
		{viewViews, gocui.KeyEnter, u.applySelectedView},
		{viewViews, gocui.KeySpace, u.applySelectedView},
		{viewViews, 'd', u.deleteSelectedView},
		{viewFocus, gocui.KeySpace, u.toggleTimer},
		{viewSearch, gocui.KeyEnter, u.submitSearch},
		{viewSearch, gocui.KeyEsc, u.cancelSearch},
		{viewForm, gocui.KeyEnter, u.submitFormNow},
		{viewForm, gocui.KeyCtrlJ, u.submitFormNow},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},
		{viewPrompt, gocui.KeyEnter, u.submitPrompt},
		{viewPrompt, gocui.KeyEsc, u.cancelPrompt},
		{viewTemplates, gocui.KeyEnter, u.submitTemplate},
		{viewTemplates, gocui.KeyEsc, u.cancelTemplates},
	}
	for _, name := range []string{viewTasks, viewLists, viewTags, viewViews, viewTemplates} {
		bindings = append(bindings,
			binding{name, gocui.KeyArrowDown, u.moveDown},
			binding{name, 'j', u.moveDown},
			binding{name, gocui.KeyArrowUp, u.moveUp},
			binding{name, 'k', u.moveUp},
		)
	}

	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewTasks, viewLists, viewTags, viewViews} {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 2)
	footerY0 := max(footerY1-2, 2)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Title = ""
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 2
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + l.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	listsY0 := bodyTop
	listsY1 := listsY0 + l.listsHeight - 1
	tagsY0 := listsY1 + 1
	tagsY1 := tagsY0 + l.tagsHeight - 1
	viewsY0 := tagsY1 + 1
	viewsY1 := bodyBottom

	tasksY0 := bodyTop
	tasksY1 := tasksY0 + l.tasksHeight - 1
	focusY0 := tasksY1 + 1
	focusY1 := focusY0 + l.focusHeight - 1
	detailsY0 := focusY1 + 1
	detailsY1 := bodyBottom

	tasksView, err := gui.SetView(viewTasks, rightX0, tasksY0, rightX1, tasksY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.TitleColor = gocui.ColorRed
	}
	tasksView.Title = fmt.Sprintf("1 Tasks (%d)", len(u.tasks))
	u.applyViewStyle(tasksView, u.focus == viewTasks, true)
	u.renderTaskList(tasksView)

	listsView, err := gui.SetView(viewLists, leftX0, listsY0, leftX1, listsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		listsView.Title = "2 Lists"
		listsView.TitleColor = gocui.ColorGreen
	}
	u.applyViewStyle(listsView, u.focus == viewLists, true)
	u.renderLists(listsView)

	tagsView, err := gui.SetView(viewTags, leftX0, tagsY0, leftX1, tagsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tagsView.Title = "3 Tags"
		tagsView.TitleColor = gocui.ColorCyan
	}
	u.applyViewStyle(tagsView, u.focus == viewTags, false)
	u.renderTags(tagsView)

	viewsView, err := gui.SetView(viewViews, leftX0, viewsY0, leftX1, viewsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		viewsView.Title = "4 Saved Views"
		viewsView.TitleColor = gocui.ColorYellow
	}
	u.applyViewStyle(viewsView, u.focus == viewViews, true)
	u.renderViews(viewsView)

	focusView, err := gui.SetView(viewFocus, rightX0, focusY0, rightX1, focusY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		focusView.Title = "6 Focus"
		focusView.TitleColor = gocui.ColorMagenta
	}
	u.applyViewStyle(focusView, u.focus == viewFocus, false)
	u.renderFocus(focusView)

	detailsView, err := gui.SetView(viewDetails, rightX0, detailsY0, rightX1, detailsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailsView.Title = "5 Details"
		detailsView.Wrap = true
	}
	u.applyViewStyle(detailsView, u.focus == viewDetails, false)
	u.renderDetails(detailsView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.prompt != nil {
		if err := u.showPrompt(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewPrompt)
	}

	if u.templatesActive {
		if err := u.showTemplates(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewTemplates)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.form != nil || u.prompt != nil

	return nil
}

type layout struct {
	leftWidth     int
	listsHeight   int
	tagsHeight    int
	viewsHeight   int
	tasksHeight   int
	focusHeight   int
	detailsHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 12)

	leftWidth := safeWidth / 4
	if leftWidth < 24 {
		leftWidth = 24
	}
	if leftWidth > safeWidth-30 {
		leftWidth = safeWidth / 3
	}

	listsHeight := max(int(float64(safeHeight)*0.35), 4)
	tagsHeight := max(int(float64(safeHeight)*0.35), 4)
	viewsHeight := safeHeight - listsHeight - tagsHeight
	if viewsHeight < 3 {
		viewsHeight = 3
		tagsHeight = max(safeHeight-listsHeight-viewsHeight, 3)
	}

	// phase, progress, sessions and task lines plus the frame
	focusHeight := 6
	tasksHeight := max(int(float64(safeHeight)*0.5), 4)
	detailsHeight := safeHeight - tasksHeight - focusHeight
	if detailsHeight < 4 {
		detailsHeight = 4
		tasksHeight = max(safeHeight-focusHeight-detailsHeight, 4)
	}

	return layout{
		leftWidth:     leftWidth,
		listsHeight:   listsHeight,
		tagsHeight:    tagsHeight,
		viewsHeight:   viewsHeight,
		tasksHeight:   tasksHeight,
		focusHeight:   focusHeight,
		detailsHeight: detailsHeight,
	}
}

// loadTasks rebuilds every pane's rows from the store and clamps the selections.
func (u *UI) loadTasks() error {
	u.store.RecountLists()
	all := u.store.Tasks()
	u.tasks = u.store.FilteredTasks(u.filter)
	u.lists = u.store.Lists()
	u.templates = u.store.Templates()

	tags := u.store.Tags()
	u.tags = countTags(all, tags)
	u.tagByID = make(map[string]string, len(tags))
	for _, tag := range tags {
		u.tagByID[tag.ID] = tag.Name
	}
	u.listByID = make(map[string]model.TaskList, len(u.lists))
	for _, list := range u.lists {
		u.listByID[list.ID] = list
	}

	u.selectedTask = clampIndex(u.selectedTask, len(u.tasks))
	u.selectedList = clampIndex(u.selectedList, len(u.lists))
	u.selectedTag = clampIndex(u.selectedTag, len(u.tags))
	u.selectedTemplate = clampIndex(u.selectedTemplate, len(u.templates))
	u.formTagIndex = clampIndex(u.formTagIndex, len(u.tags))

	return u.loadViews()
}

func (u *UI) loadViews() error {
	if u.views == nil {
		u.saved = nil
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	views, err := u.views.ListViews(ctx)
	if err != nil {
		return err
	}
	u.saved = views
	u.selectedView = clampIndex(u.selectedView, len(u.saved))
	return nil
}

func (u *UI) loadSettings() {
	if u.settingsDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	settings, err := u.settingsDB.LoadSettings(ctx)
	if err != nil {
		u.logger.Warn("load settings failed", slog.Any("err", err))
		return
	}
	u.settings = settings
	u.notifyOn.Store(settings.NotificationsEnabled)
}

func clampIndex(index, length int) int {
	if index >= length {
		index = length - 1
	}
	return max(index, 0)
}

func (u *UI) today() model.Date {
	return model.DateOf(u.now())
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	search := strings.TrimSpace(u.filter.Search)
	if search == "" {
		search = "type / to search"
	}

	viewLabel := "none"
	if u.activeView != nil {
		viewLabel = u.activeView.Name
	}

	listLabel := model.FilterAll
	if u.filter.ListID != "" && u.filter.ListID != model.FilterAll {
		listLabel = u.listName(u.filter.ListID)
	}

	tagsLabel := "none"
	if len(u.filter.TagIDs) > 0 {
		tagsLabel = strings.Join(tagNames(u.filter.TagIDs, u.tagByID), ",")
	}

	priority := u.filter.Priority
	if priority == "" {
		priority = model.FilterAll
	}

	fmt.Fprintf(view, "Search: %s | View: %s | Priority: %s | Status: %s | List: %s | Tags: %s | Sort: %s %s\n",
		search, viewLabel, priority, u.filter.Completed, listLabel, tagsLabel, u.filter.SortBy, u.filter.SortOrder)
	fmt.Fprint(view, formatStats(u.store.Stats()))
	if err := u.store.Err(); err != nil {
		fmt.Fprint(view, " | offline")
	}
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | e edit | d delete | x done | J/K reorder | t template | f focus | s start/pause | R reset | b skip | C complete | F close")
	fmt.Fprintln(view, "/ search | p priority | c status | o sort | O order | g clear | w save view | r reload | tab/1-6 panes | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View) {
	view.Clear()
	today := u.today()
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selectedTask {
			if u.focus == viewTasks {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		summary := formatTaskSummary(task, u.listName(task.ListID), tagNames(task.Tags, u.tagByID), today)
		fmt.Fprintf(view, "%s %s\n", prefix, summary)
	}
	if len(u.tasks) == 0 {
		fmt.Fprint(view, "  No tasks match the current filters")
	}
	if u.focus == viewTasks {
		view.SetCursor(0, max(min(u.selectedTask, len(u.tasks)-1), 0))
	}
}

func (u *UI) renderLists(view *gocui.View) {
	view.Clear()
	for index, list := range u.lists {
		prefix := " "
		if index == u.selectedList {
			prefix = ">"
		}
		marker := " "
		if u.filter.ListID == list.ID {
			marker = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s (%d)\n", prefix, marker, list.Name, list.TaskCount)
	}
	if u.focus == viewLists {
		view.SetCursor(0, max(min(u.selectedList, len(u.lists)-1), 0))
	}
}

func (u *UI) renderTags(view *gocui.View) {
	view.Clear()
	for index, entry := range u.tags {
		prefix := " "
		if index == u.selectedTag {
			prefix = ">"
		}
		marker := " "
		if u.isTagActive(entry.ID) {
			marker = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s (%d)\n", prefix, marker, entry.Name, entry.Count)
	}
	if u.focus == viewTags {
		view.SetCursor(0, max(min(u.selectedTag, len(u.tags)-1), 0))
	}
}

func (u *UI) renderViews(view *gocui.View) {
	view.Clear()
	if u.views == nil {
		fmt.Fprint(view, "  Saved views need a database")
		return
	}
	for index, saved := range u.saved {
		prefix := " "
		if index == u.selectedView {
			prefix = ">"
		}
		marker := " "
		if u.activeView != nil && u.activeView.ID == saved.ID {
			marker = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s\n", prefix, marker, saved.Name)
	}
	if u.focus == viewViews {
		view.SetCursor(0, max(min(u.selectedView, len(u.saved)-1), 0))
	}
}

func (u *UI) renderDetails(view *gocui.View) {
	view.Clear()
	selected := u.selectedTaskItem()
	if selected == nil {
		fmt.Fprint(view, "No task selected")
		return
	}

	status := "open"
	if selected.Completed {
		status = "completed"
	}
	due := selected.DueDate.String()
	if isOverdue(*selected, u.today()) {
		due += " (overdue)"
	}
	tags := "no tags"
	if len(selected.Tags) > 0 {
		tags = strings.Join(tagNames(selected.Tags, u.tagByID), ", ")
	}

	lines := []string{
		selected.Title,
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("Priority: %s", selected.Priority),
		fmt.Sprintf("Due: %s", due),
		fmt.Sprintf("List: %s", u.listName(selected.ListID)),
		fmt.Sprintf("Tags: %s", tags),
		fmt.Sprintf("Position: %d", selected.Order+1),
		fmt.Sprintf("Created: %s | Updated: %s", formatTimestamp(selected.CreatedAt), formatTimestamp(selected.UpdatedAt)),
	}
	if description := strings.TrimSpace(selected.Description); description != "" {
		lines = append(lines, "", description)
	}
	fmt.Fprint(view, strings.Join(lines, "\n"))
}

func (u *UI) renderFocus(view *gocui.View) {
	view.Clear()
	if u.timer == nil {
		return
	}
	state := u.timer.State()
	title := ""
	if state.TaskID != "" {
		title = state.TaskID
		if task, ok := u.store.Task(state.TaskID); ok {
			title = task.Title
		}
	}
	fmt.Fprint(view, strings.Join(formatFocusState(state, u.timer.Progress(), title), "\n"))
}

func (u *UI) listName(id string) string {
	if list, ok := u.listByID[id]; ok {
		return list.Name
	}
	return id
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewTasks:
		u.selectedTask = clampIndex(row, len(u.tasks))
	case viewLists:
		u.selectedList = clampIndex(row, len(u.lists))
	case viewTags:
		u.selectedTag = clampIndex(row, len(u.tags))
	case viewViews:
		u.selectedView = clampIndex(row, len(u.saved))
	default:
		return nil
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	views := []string{viewTasks, viewLists, viewTags, viewViews, viewDetails}
	for _, name := range views {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) selectedTaskItem() *model.Task {
	if u.selectedTask >= 0 && u.selectedTask < len(u.tasks) {
		return &u.tasks[u.selectedTask]
	}
	return nil
}

var paneCycle = []string{viewTasks, viewLists, viewTags, viewViews, viewDetails, viewFocus}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := paneCycle[0]
	for i, name := range paneCycle {
		if name == u.focus {
			next = paneCycle[(i+1)%len(paneCycle)]
			break
		}
	}
	return u.setFocus(gui, next)
}

func (u *UI) focusPane(name string) func(*gocui.Gui, *gocui.View) error {
	return func(gui *gocui.Gui, _ *gocui.View) error {
		return u.setFocus(gui, name)
	}
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.prompt != nil || u.form != nil || u.searchActive || u.helpActive {
		return nil
	}
	if u.templatesActive {
		if u.selectedTemplate < len(u.templates)-1 {
			u.selectedTemplate++
		}
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selectedTask < len(u.tasks)-1 {
			u.selectedTask++
		}
	case viewLists:
		if u.selectedList < len(u.lists)-1 {
			u.selectedList++
		}
	case viewTags:
		if u.selectedTag < len(u.tags)-1 {
			u.selectedTag++
		}
	case viewViews:
		if u.selectedView < len(u.saved)-1 {
			u.selectedView++
		}
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.prompt != nil || u.form != nil || u.searchActive || u.helpActive {
		return nil
	}
	if u.templatesActive {
		if u.selectedTemplate > 0 {
			u.selectedTemplate--
		}
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selectedTask > 0 {
			u.selectedTask--
		}
	case viewLists:
		if u.selectedList > 0 {
			u.selectedList--
		}
	case viewTags:
		if u.selectedTag > 0 {
			u.selectedTag--
		}
	case viewViews:
		if u.selectedView > 0 {
			u.selectedView--
		}
	}
	return nil
}

// reload refetches the session from the backend. On failure the store keeps
// its fallback data and the error is shown in the footer.
func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	u.status = ""
	if err := u.store.Initialize(ctx); err != nil {
		u.status = err.Error()
		return u.loadTasks()
	}
	if err := u.store.LoadTemplates(ctx); err != nil {
		u.status = err.Error()
	}
	return u.loadTasks()
}

func (u *UI) clearFilters(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.filter = model.DefaultFilter()
	u.activeView = nil
	u.status = ""
	return u.loadTasks()
}

func (u *UI) cyclePriorityFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	order := append([]string{model.FilterAll}, priorityCycle...)
	u.filter.Priority = cycleValue(order, u.filter.Priority, 1)
	u.activeView = nil
	return u.loadTasks()
}

func (u *UI) cycleCompletedFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	order := []string{string(model.CompletedAll), string(model.CompletedIncomplete), string(model.CompletedOnly)}
	u.filter.Completed = model.CompletedFilter(cycleValue(order, string(u.filter.Completed), 1))
	u.activeView = nil
	return u.loadTasks()
}

func (u *UI) cycleSort(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	order := []string{string(model.SortByCreatedAt), string(model.SortByDueDate), string(model.SortByPriority), string(model.SortByTitle)}
	u.filter.SortBy = model.SortBy(cycleValue(order, string(u.filter.SortBy), 1))
	u.activeView = nil
	return u.loadTasks()
}

func (u *UI) toggleSortOrder(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.filter.SortOrder == model.SortAsc {
		u.filter.SortOrder = model.SortDesc
	} else {
		u.filter.SortOrder = model.SortAsc
	}
	u.activeView = nil
	return u.loadTasks()
}

func (u *UI) toggleListFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewLists {
		return nil
	}
	if u.selectedList < 0 || u.selectedList >= len(u.lists) {
		return nil
	}
	id := u.lists[u.selectedList].ID
	if u.filter.ListID == id {
		u.filter.ListID = model.FilterAll
	} else {
		u.filter.ListID = id
	}
	u.activeView = nil
	return u.loadTasks()
}

func (u *UI) toggleTagFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewTags {
		return nil
	}
	if u.selectedTag < 0 || u.selectedTag >= len(u.tags) {
		return nil
	}
	id := u.tags[u.selectedTag].ID
	if u.isTagActive(id) {
		u.filter.TagIDs = removeString(u.filter.TagIDs, id)
	} else {
		u.filter.TagIDs = append(u.filter.TagIDs, id)
	}
	u.activeView = nil
	return u.loadTasks()
}

func (u *UI) isTagActive(id string) bool {
	for _, active := range u.filter.TagIDs {
		if active == id {
			return true
		}
	}
	return false
}

func removeString(values []string, target string) []string {
	kept := make([]string, 0, len(values))
	for _, value := range values {
		if value != target {
			kept = append(kept, value)
		}
	}
	return kept
}

func (u *UI) startSearch(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search"
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.filter.Search)
		view.SetCursor(len([]rune(u.filter.Search)), 0)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) applySearch(value string) error {
	u.filter.Search = strings.TrimSpace(value)
	u.activeView = nil
	u.status = ""
	return u.loadTasks()
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return u.applySearch(view.Buffer())
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(64, maxX/2)
	height := min(32, maxY-2)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.form != nil || u.helpActive || u.prompt != nil || u.templatesActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes | 1 Tasks | 2 Lists | 3 Tags | 4 Views | 5 Details | 6 Focus",
		"  j/k or arrows move selection | mouse click selects | wheel scrolls",
		"",
		"Tasks:",
		"  a add | e edit | d delete | x toggle done | X complete all shown | J/K move within list",
		"  t new task from template",
		"",
		"Filters:",
		"  / search | p priority | c completed | o sort field | O sort order | g clear",
		"  space/enter toggles list filter (Lists) or tag filter (Tags)",
		"  w save current filters as a view | enter applies a view (Views) | d deletes it",
		"",
		"Lists and tags:",
		"  a add | e rename (Lists) | d delete",
		"",
		"Focus timer:",
		"  f attach selected task | s or space start/pause | R reset | b skip break",
		"  C complete attached task | F close",
		"",
		"Form:",
		"  tab/arrows next field | space/left/right cycle priority, list and tags | enter save | esc cancel",
		"",
		"Other:",
		"  r reload from server | S reset streak | N toggle notifications | B toggle sound",
		"  T cycle theme (system, light, dark) | ? help | q quit",
	}, "\n")
}

func (u *UI) applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	colors := themePalette(u.settings.Theme)
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = colors.selBg
	view.SelFgColor = colors.selFg
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = colors.accent
		view.TitleColor = colors.accent
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
