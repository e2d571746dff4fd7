package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/engadmin/internal/config"
	"github.com/kingrea/engadmin/internal/engineers"
)

// engineerItem implements list.Item for one listing row.
type engineerItem struct {
	summary engineers.Summary
}

func (i engineerItem) Title() string {
	title := i.summary.DisplayName()
	if i.summary.Hold {
		title += " " + holdStyle.Render("[on hold]")
	}
	return title
}

func (i engineerItem) Description() string {
	parts := []string{engineers.StatusLabel(i.summary.Status)}
	for _, v := range []string{i.summary.Email, i.summary.Phone, i.summary.SkillCategory} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " · ")
}

func (i engineerItem) FilterValue() string { return i.summary.Name }

type engineersView struct {
	list      list.Model
	search    textinput.Model
	searching bool
	status    string
	loading   bool
	shown     int
	total     int
}

func newEngineersView(defaultStatus string) engineersView {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Engineers"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	search := textinput.New()
	search.Placeholder = "Search by name or email"
	search.Prompt = "/ "
	search.Cursor.SetMode(cursor.CursorStatic)

	if defaultStatus == "" {
		defaultStatus = engineers.StatusAll
	}
	return engineersView{list: l, search: search, status: defaultStatus}
}

func (v *engineersView) setSize(width, height int) {
	v.list.SetSize(width, height)
}

func (v *engineersView) filter() engineers.Filter {
	return engineers.Filter{Query: v.search.Value(), Status: v.status}
}

// sync reapplies the filter to the listing and refills the list.
func (v *engineersView) sync(listing *engineers.Listing) {
	listing.SetFilter(v.filter())
	snap := listing.Snapshot()
	items := make([]list.Item, len(snap.Filtered))
	for i, s := range snap.Filtered {
		items[i] = engineerItem{summary: s}
	}
	v.list.SetItems(items)
	if idx := v.list.Index(); idx >= len(items) && len(items) > 0 {
		v.list.Select(len(items) - 1)
	}
	v.shown, v.total = len(snap.Filtered), len(snap.Items)
}

func (v *engineersView) selected() (engineers.Summary, bool) {
	item, ok := v.list.SelectedItem().(engineerItem)
	if !ok {
		return engineers.Summary{}, false
	}
	return item.summary, true
}

func (a *App) openEngineers() tea.Cmd {
	a.screen = screenEngineers
	a.detail = nil
	a.engineers.sync(a.listing)
	return nil
}

func (a *App) updateEngineers(msg tea.KeyMsg) tea.Cmd {
	v := &a.engineers
	if v.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			v.searching = false
			v.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		v.sync(a.listing)
		return cmd
	}

	switch msg.String() {
	case "esc":
		a.screen = screenDashboard
		return nil
	case "/":
		v.searching = true
		return v.search.Focus()
	case "s":
		return a.cycleStatusFilter()
	case "r":
		a.statusMsg = "Refreshing..."
		return a.refreshListing()
	case "L":
		return a.logout()
	case "enter":
		summary, ok := v.selected()
		if !ok {
			return nil
		}
		return a.openDetail(summary.UserID)
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

// cycleStatusFilter advances the status filter and remembers it as the
// default for the next launch.
func (a *App) cycleStatusFilter() tea.Cmd {
	v := &a.engineers
	v.status = engineers.NextStatus(v.status, config.StatusFilters)
	v.sync(a.listing)
	if err := a.config.SetDefaultStatus(v.status); err != nil {
		a.logError("Saving status filter failed: %v", err)
	} else {
		a.logInfo("Status filter set to %s", v.status)
	}
	a.statusMsg = fmt.Sprintf("Status filter: %s", v.status)
	return nil
}

func (a *App) viewEngineers(width int) string {
	v := a.engineers
	filterLine := fmt.Sprintf("Status: %s    Showing %d of %d", titleStyle.Render(v.status), v.shown, v.total)
	lines := []string{v.search.View(), mutedStyle.Render(filterLine)}
	if v.loading {
		lines = append(lines, a.spinner.View()+" Loading engineers...")
	}
	if v.shown == 0 && !v.loading {
		empty := "No engineers yet."
		if a.engineers.filter().Active() {
			empty = "No engineers match the current search and filter."
		}
		lines = append(lines, "", mutedStyle.Render(empty))
	} else {
		lines = append(lines, "", lipgloss.NewStyle().Width(max(20, width)).Render(v.list.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
