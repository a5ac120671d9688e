package tui

import (
	"context"
	"fmt"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/store"
)

// focusSelectedTask attaches the selected task to the timer and moves to the focus pane.
func (u *UI) focusSelectedTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.timer == nil {
		return nil
	}
	selected := u.selectedTaskItem()
	if selected == nil {
		return nil
	}
	if selected.Completed {
		u.status = fmt.Sprintf("%q is already completed", selected.Title)
		return nil
	}
	u.timer.Attach(selected.ID)
	u.status = ""
	return u.setFocus(gui, viewFocus)
}

func (u *UI) toggleTimer(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.timer == nil {
		return nil
	}
	u.timer.Toggle()
	return nil
}

func (u *UI) resetTimer(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.timer == nil {
		return nil
	}
	u.timer.Reset()
	return nil
}

func (u *UI) skipBreak(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.timer == nil {
		return nil
	}
	if err := u.timer.SkipBreak(); err != nil {
		u.status = err.Error()
	}
	return nil
}

func (u *UI) completeFocusedTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.timer == nil {
		return nil
	}
	if err := u.timer.CompleteTask(); err != nil {
		u.status = err.Error()
		return u.loadTasks()
	}
	u.status = "focused task completed"
	return u.loadTasks()
}

func (u *UI) closeFocus(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.timer == nil {
		return nil
	}
	u.timer.Close()
	return nil
}

// completeTask is the timer's completion callback. Stats follow the backend's count.
func (u *UI) completeTask(taskID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	done := true
	if err := u.store.UpdateTask(ctx, taskID, store.TaskPatch{Completed: &done}); err != nil {
		return err
	}
	_ = u.store.RefreshStats(ctx)
	return nil
}
