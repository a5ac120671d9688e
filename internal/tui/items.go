package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/focus"
	"github.com/Joseda-hg/taskflow/internal/model"
)

var (
	highColor    = color.New(color.FgRed, color.Bold)
	mediumColor  = color.New(color.FgYellow)
	lowColor     = color.New(color.FgGreen)
	overdueColor = color.New(color.FgRed)
	doneColor    = color.New(color.Faint)
)

type tagCountEntry struct {
	ID    string
	Name  string
	Count int
}

func priorityLabel(priority model.Priority) string {
	switch priority {
	case model.PriorityHigh:
		return highColor.Sprint("high")
	case model.PriorityLow:
		return lowColor.Sprint("low")
	default:
		return mediumColor.Sprint(string(priority))
	}
}

func isOverdue(task model.Task, today model.Date) bool {
	return !task.Completed && !task.DueDate.IsZero() && task.DueDate < today
}

func dueLabel(task model.Task, today model.Date) string {
	if task.DueDate.IsZero() {
		return ""
	}
	label := "due " + string(task.DueDate)
	if isOverdue(task, today) {
		return overdueColor.Sprint(label + " overdue")
	}
	return label
}

func formatTaskSummary(task model.Task, listName string, tagNames []string, today model.Date) string {
	check := "[ ]"
	title := task.Title
	if task.Completed {
		check = "[x]"
		title = doneColor.Sprint(title)
	}

	parts := []string{fmt.Sprintf("%s %s", check, title), priorityLabel(task.Priority)}
	if due := dueLabel(task, today); due != "" {
		parts = append(parts, due)
	}
	if listName != "" {
		parts = append(parts, listName)
	}
	if len(tagNames) > 0 {
		parts = append(parts, "#"+strings.Join(tagNames, " #"))
	}
	return strings.Join(parts, " | ")
}

// tagNames resolves ids through byID; unknown ids are shown as-is.
func tagNames(ids []string, byID map[string]string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

func countTags(tasks []model.Task, tags []model.Tag) []tagCountEntry {
	counts := make(map[string]int)
	for _, task := range tasks {
		for _, id := range task.Tags {
			counts[id]++
		}
	}

	entries := make([]tagCountEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, tagCountEntry{ID: tag.ID, Name: tag.Name, Count: counts[tag.ID]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count == entries[j].Count {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Count > entries[j].Count
	})
	return entries
}

func progressBar(progress float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := int(progress * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func formatFocusState(state focus.State, progress float64, taskTitle string) []string {
	phase := "Focus"
	if state.Phase == focus.PhaseBreak {
		phase = "Break"
	}
	running := "paused"
	if state.Running {
		running = "running"
	}
	if taskTitle == "" {
		taskTitle = "none (f to attach selected task)"
	}
	return []string{
		fmt.Sprintf("%s %s (%s)", phase, focus.FormatRemaining(state.Remaining), running),
		fmt.Sprintf("%s %d%%", progressBar(progress, 20), int(progress*100)),
		fmt.Sprintf("Sessions: %d", state.Completed),
		fmt.Sprintf("Task: %s", taskTitle),
	}
}

func formatStats(stats model.UserStats) string {
	return fmt.Sprintf("Streak: %d (best %d) | Today: %d | Total: %d | Last: %s",
		stats.CurrentStreak, stats.LongestStreak, stats.TasksCompletedToday, stats.TasksCompletedTotal, stats.LastCompletedDate)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Local().Format("2006-01-02 15:04")
}

var themeCycle = []string{string(model.ThemeSystem), string(model.ThemeLight), string(model.ThemeDark)}

type palette struct {
	accent gocui.Attribute
	selBg  gocui.Attribute
	selFg  gocui.Attribute
}

// themePalette picks frame and selection colours. The system theme keeps the terminal's own look.
func themePalette(theme model.Theme) palette {
	switch theme {
	case model.ThemeLight:
		return palette{accent: gocui.ColorBlue, selBg: gocui.ColorCyan, selFg: gocui.ColorBlack}
	case model.ThemeDark:
		return palette{accent: gocui.ColorYellow, selBg: gocui.ColorMagenta, selFg: gocui.ColorWhite}
	default:
		return palette{accent: gocui.ColorCyan, selBg: gocui.ColorBlue, selFg: gocui.ColorBlack}
	}
}
