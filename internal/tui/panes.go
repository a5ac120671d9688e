package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/store"
)

var errNoViewStore = errors.New("saved views need a database")

func (u *UI) openPrompt(title, value string, submit func(string) error) {
	u.prompt = &promptState{title: title, value: value, submit: submit}
}

func (u *UI) showPrompt(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewPrompt, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.prompt.value)
		view.SetCursor(len([]rune(u.prompt.value)), 0)
	}
	view.Title = u.prompt.title
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewPrompt)
	return nil
}

func (u *UI) submitPrompt(gui *gocui.Gui, view *gocui.View) error {
	if u.prompt == nil {
		return nil
	}
	if err := u.prompt.submit(strings.TrimSpace(view.Buffer())); err != nil {
		u.status = err.Error()
		return nil
	}
	return u.closePrompt(gui)
}

func (u *UI) cancelPrompt(gui *gocui.Gui, _ *gocui.View) error {
	if u.prompt == nil {
		return nil
	}
	return u.closePrompt(gui)
}

func (u *UI) closePrompt(gui *gocui.Gui) error {
	u.prompt = nil
	_ = gui.DeleteView(viewPrompt)
	_, _ = gui.SetCurrentView(u.focus)
	return u.loadTasks()
}

func (u *UI) openListCreate(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewLists {
		return nil
	}
	u.openPrompt("New List", "", u.createList)
	return nil
}

func (u *UI) createList(name string) error {
	if name == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	list, err := u.store.AddList(ctx, store.ListDraft{Name: name})
	if err != nil {
		return err
	}
	u.status = fmt.Sprintf("created list %q", list.Name)
	return nil
}

func (u *UI) openListRename(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewLists {
		return nil
	}
	if u.selectedList < 0 || u.selectedList >= len(u.lists) {
		return nil
	}
	list := u.lists[u.selectedList]
	u.openPrompt("Rename List", list.Name, func(name string) error {
		return u.renameList(list.ID, name)
	})
	return nil
}

func (u *UI) renameList(id, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return u.store.UpdateList(ctx, id, store.ListPatch{Name: &name})
}

// deleteList removes the selected list together with its tasks.
func (u *UI) deleteList(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewLists {
		return nil
	}
	if u.selectedList < 0 || u.selectedList >= len(u.lists) {
		return nil
	}
	list := u.lists[u.selectedList]

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.store.DeleteList(ctx, list.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	if u.filter.ListID == list.ID {
		u.filter.ListID = model.FilterAll
	}
	if u.timer != nil {
		if taskID := u.timer.State().TaskID; taskID != "" {
			if _, ok := u.store.Task(taskID); !ok {
				u.timer.Close()
			}
		}
	}
	u.status = fmt.Sprintf("deleted list %q", list.Name)
	return u.loadTasks()
}

func (u *UI) openTagCreate(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewTags {
		return nil
	}
	u.openPrompt("New Tag", "", u.createTag)
	return nil
}

func (u *UI) createTag(name string) error {
	if name == "" {
		return nil
	}
	for _, tag := range u.store.Tags() {
		if strings.EqualFold(tag.Name, name) {
			return fmt.Errorf("tag %q already exists", tag.Name)
		}
	}
	u.store.AddTag(store.TagDraft{Name: name})
	return nil
}

func (u *UI) deleteTag(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewTags {
		return nil
	}
	if u.selectedTag < 0 || u.selectedTag >= len(u.tags) {
		return nil
	}
	entry := u.tags[u.selectedTag]
	if !u.store.DeleteTag(entry.ID) {
		u.status = fmt.Sprintf("tag %q not found", entry.Name)
		return nil
	}
	u.filter.TagIDs = removeString(u.filter.TagIDs, entry.ID)
	u.status = ""
	return u.loadTasks()
}

func (u *UI) openViewSave(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.views == nil {
		u.status = errNoViewStore.Error()
		return nil
	}
	name := ""
	if u.activeView != nil {
		name = u.activeView.Name
	}
	u.openPrompt("Save View", name, u.saveView)
	return nil
}

// saveView stores the current filters under name, replacing a view with the same name.
func (u *UI) saveView(name string) error {
	if u.views == nil {
		return errNoViewStore
	}
	if name == "" {
		return fmt.Errorf("view name is required")
	}
	filter := u.filter
	filter.TagIDs = append([]string{}, u.filter.TagIDs...)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	saved, err := u.views.SaveView(ctx, model.View{Name: name, Filter: filter})
	if err != nil {
		return err
	}
	u.activeView = &saved
	u.status = fmt.Sprintf("saved view %q", saved.Name)
	return u.loadViews()
}

func (u *UI) applySelectedView(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewViews {
		return nil
	}
	if u.selectedView < 0 || u.selectedView >= len(u.saved) {
		return nil
	}
	saved := u.saved[u.selectedView]
	u.filter = saved.Filter
	u.filter.TagIDs = append([]string{}, saved.Filter.TagIDs...)
	u.activeView = &saved
	u.status = ""
	return u.loadTasks()
}

func (u *UI) deleteSelectedView(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewViews || u.views == nil {
		return nil
	}
	if u.selectedView < 0 || u.selectedView >= len(u.saved) {
		return nil
	}
	saved := u.saved[u.selectedView]

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := u.views.DeleteView(ctx, saved.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	if u.activeView != nil && u.activeView.ID == saved.ID {
		u.activeView = nil
	}
	u.status = ""
	return u.loadViews()
}
