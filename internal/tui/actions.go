package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	listName := ""
	if u.filter.ListID != "" && u.filter.ListID != model.FilterAll {
		listName = u.listName(u.filter.ListID)
	} else if len(u.lists) > 0 {
		listName = u.lists[0].Name
	}
	u.form = &formState{fields: buildFormFields(nil, listName, tagNames(u.filter.TagIDs, u.tagByID))}
	u.formTagIndex = 0
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTaskItem()
	if selected == nil {
		return nil
	}
	fields := buildFormFields(selected, u.listName(selected.ListID), tagNames(selected.Tags, u.tagByID))
	u.form = &formState{taskID: selected.ID, fields: fields}
	u.formTagIndex = 0
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(10, max(8, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	if u.form.taskID != "" {
		view.Title = "Edit Task"
	} else {
		view.Title = "New Task"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// saveForm creates or updates the task described by the open form. Unknown tag
// names become new tags.
func (u *UI) saveForm() error {
	if u.form == nil {
		return nil
	}
	input, err := parseFormFields(u.form.fields)
	if err != nil {
		return err
	}
	tagIDs := u.resolveTagIDs(input.TagNames)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if u.form.taskID == "" {
		_, err := u.store.AddTask(ctx, store.TaskDraft{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			DueDate:     input.DueDate,
			ListID:      u.listIDByName(input.ListName),
			Tags:        tagIDs,
		})
		return err
	}
	return u.store.UpdateTask(ctx, u.form.taskID, input.taskPatch(tagIDs))
}

func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if err := u.saveForm(); err != nil {
		u.status = err.Error()
		return nil
	}

	u.form = nil
	u.status = ""
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return u.loadTasks()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		value := field.Value
		if isTagsField(field.Label) {
			if candidate := u.currentTagOption(); candidate != "" {
				value = fmt.Sprintf("%s [pick: %s]", value, candidate)
			}
		}
		if isListField(field.Label) && u.form.taskID != "" {
			value += " (fixed)"
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, value)
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	ui.editField(key, ch, mod)
	ui.renderForm(view)
	return true
}

// editField applies one keystroke to the focused form field.
func (u *UI) editField(key gocui.Key, ch rune, mod gocui.Modifier) {
	field := &u.form.fields[u.form.index]

	switch {
	case isPriorityField(field.Label):
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleValue(priorityCycle, field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleValue(priorityCycle, field.Value, -1)
		}
		return
	case isListField(field.Label):
		if u.form.taskID != "" {
			return
		}
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleValue(u.listOptions(), field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleValue(u.listOptions(), field.Value, -1)
		}
		return
	case isTagsField(field.Label):
		switch key {
		case gocui.KeyArrowRight:
			u.formTagIndex = min(u.formTagIndex+1, len(u.tagOptions())-1)
		case gocui.KeyArrowLeft:
			u.formTagIndex = max(u.formTagIndex-1, 0)
		case gocui.KeySpace:
			u.toggleTagInField(field)
			return
		}
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}
}

func (u *UI) listOptions() []string {
	result := make([]string, 0, len(u.lists))
	for _, list := range u.lists {
		result = append(result, list.Name)
	}
	return result
}

func (u *UI) tagOptions() []string {
	result := make([]string, 0, len(u.tags))
	for _, entry := range u.tags {
		result = append(result, entry.Name)
	}
	return result
}

func (u *UI) currentTagOption() string {
	options := u.tagOptions()
	if len(options) == 0 {
		return ""
	}
	u.formTagIndex = clampIndex(u.formTagIndex, len(options))
	return options[u.formTagIndex]
}

func (u *UI) toggleTagInField(field *formField) {
	current := u.currentTagOption()
	if current == "" {
		return
	}

	selected := make(map[string]struct{})
	for _, name := range parseTags(field.Value) {
		selected[name] = struct{}{}
	}
	if _, ok := selected[current]; ok {
		delete(selected, current)
	} else {
		selected[current] = struct{}{}
	}

	ordered := make([]string, 0, len(selected))
	for name := range selected {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)
	field.Value = strings.Join(ordered, ", ")
}

// resolveTagIDs maps names to tag ids case-insensitively, creating tags that do not exist yet.
func (u *UI) resolveTagIDs(names []string) []string {
	existing := make(map[string]string)
	for _, tag := range u.store.Tags() {
		existing[strings.ToLower(tag.Name)] = tag.ID
	}

	ids := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		id, ok := existing[key]
		if !ok {
			id = u.store.AddTag(store.TagDraft{Name: name}).ID
			existing[key] = id
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// listIDByName falls back to the raw name so the store can report an unknown list.
func (u *UI) listIDByName(name string) string {
	for _, list := range u.lists {
		if strings.EqualFold(list.Name, name) {
			return list.ID
		}
	}
	return name
}

func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTaskItem()
	if selected == nil {
		return nil
	}
	id := selected.ID

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.store.DeleteTask(ctx, id); err != nil {
		u.status = err.Error()
		return nil
	}
	if u.timer != nil && u.timer.State().TaskID == id {
		u.timer.Close()
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) toggleComplete(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTaskItem()
	if selected == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.store.ToggleComplete(ctx, selected.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

// completeVisible marks every open task in the filtered view completed with one request.
func (u *UI) completeVisible(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	ids := make([]string, 0, len(u.tasks))
	for _, task := range u.tasks {
		if !task.Completed {
			ids = append(ids, task.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.store.CompleteTasks(ctx, ids); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = fmt.Sprintf("completed %d tasks", len(ids))
	return u.loadTasks()
}

func (u *UI) moveTaskDown(_ *gocui.Gui, _ *gocui.View) error {
	return u.moveTask(1)
}

func (u *UI) moveTaskUp(_ *gocui.Gui, _ *gocui.View) error {
	return u.moveTask(-1)
}

// moveTask shifts the selected task delta places within its own list.
func (u *UI) moveTask(delta int) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTaskItem()
	if selected == nil {
		return nil
	}

	siblings := make([]model.Task, 0)
	for _, task := range u.store.Tasks() {
		if task.ListID == selected.ListID {
			siblings = append(siblings, task)
		}
	}
	sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].Order < siblings[j].Order })

	from := -1
	for i, task := range siblings {
		if task.ID == selected.ID {
			from = i
			break
		}
	}
	to := from + delta
	if from < 0 || to < 0 || to >= len(siblings) {
		return nil
	}

	if err := u.store.ReorderTasks(selected.ListID, from, to); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = fmt.Sprintf("moved %q to position %d in %s", selected.Title, to+1, u.listName(selected.ListID))
	return u.loadTasks()
}

func (u *UI) openTemplates(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if len(u.templates) == 0 {
		u.status = "no templates loaded (r to reload)"
		return nil
	}
	u.templatesActive = true
	u.selectedTemplate = clampIndex(u.selectedTemplate, len(u.templates))
	return nil
}

func (u *UI) showTemplates(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, maxX/2)
	height := min(len(u.templates)+1, max(maxY-4, 3))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewTemplates, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Templates (enter create, esc cancel)"
	}
	view.Clear()
	for index, template := range u.templates {
		prefix := " "
		if index == u.selectedTemplate {
			prefix = ">"
		}
		due := "no due date"
		if template.DueOffset != 0 {
			due = fmt.Sprintf("due in %d days", template.DueOffset)
		}
		fmt.Fprintf(view, "%s %s | %s | %s | %s\n", prefix, template.Title, template.Priority, due, u.listName(template.ListID))
	}
	view.SetCursor(0, u.selectedTemplate)
	_, _ = gui.SetCurrentView(viewTemplates)
	return nil
}

func (u *UI) createFromSelectedTemplate() error {
	if u.selectedTemplate < 0 || u.selectedTemplate >= len(u.templates) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	task, err := u.store.CreateFromTemplateIn(ctx, u.templates[u.selectedTemplate].ID, u.templateListID())
	if err != nil {
		return err
	}
	u.status = fmt.Sprintf("created %q", task.Title)
	return nil
}

// templateListID is the list a template without one lands in: the filtered list,
// else the one selected in the lists pane.
func (u *UI) templateListID() string {
	if u.filter.ListID != "" && u.filter.ListID != model.FilterAll {
		return u.filter.ListID
	}
	if u.selectedList >= 0 && u.selectedList < len(u.lists) {
		return u.lists[u.selectedList].ID
	}
	return ""
}

func (u *UI) submitTemplate(gui *gocui.Gui, _ *gocui.View) error {
	if err := u.createFromSelectedTemplate(); err != nil {
		u.status = err.Error()
	}
	return u.cancelTemplates(gui, nil)
}

func (u *UI) cancelTemplates(gui *gocui.Gui, _ *gocui.View) error {
	u.templatesActive = false
	_ = gui.DeleteView(viewTemplates)
	_, _ = gui.SetCurrentView(u.focus)
	return u.loadTasks()
}

func (u *UI) resetStreak(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.store.ResetStreak(ctx); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = "streak reset"
	return nil
}

func (u *UI) toggleNotifications(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.settings.NotificationsEnabled = !u.settings.NotificationsEnabled
	u.notifyOn.Store(u.settings.NotificationsEnabled)

	state := "off"
	if u.settings.NotificationsEnabled {
		state = "on"
	}
	u.status = "notifications " + state
	u.saveSettings()
	return nil
}

func (u *UI) toggleSound(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.settings.SoundEnabled = !u.settings.SoundEnabled

	state := "off"
	if u.settings.SoundEnabled {
		state = "on"
	}
	u.status = "sound " + state
	u.saveSettings()
	return nil
}

// cycleTheme steps through system, light and dark. The next layout pass repaints the frames.
func (u *UI) cycleTheme(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.settings.Theme = model.Theme(cycleValue(themeCycle, string(u.settings.Theme), 1))
	u.status = "theme " + string(u.settings.Theme)
	u.saveSettings()
	return nil
}

func (u *UI) saveSettings() {
	if u.settingsDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.settingsDB.SaveSettings(ctx, u.settings); err != nil {
		u.status = err.Error()
	}
}
