package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/engadmin/internal/api"
	"github.com/kingrea/engadmin/internal/engineers"
	"github.com/kingrea/engadmin/internal/session"
)

// openDashboard switches to the dashboard and refreshes its counters.
func (a *App) openDashboard() tea.Cmd {
	a.screen = screenDashboard
	a.detail = nil
	return a.refreshListing()
}

func (a *App) refreshListing() tea.Cmd {
	a.engineers.loading = true
	return tea.Batch(func() tea.Msg {
		return listingLoadedMsg{err: a.listing.Refresh(a.ctx)}
	}, a.spinner.Tick)
}

func (a *App) handleListingLoaded(msg listingLoadedMsg) tea.Cmd {
	a.engineers.loading = false
	if msg.err != nil {
		if handled, cmd := a.expired(msg.err); handled {
			return cmd
		}
		a.setError(msg.err)
		return nil
	}
	a.err = nil
	a.engineers.sync(a.listing)
	return nil
}

func (a *App) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "e", "enter":
		return a.openEngineers()
	case "r":
		a.statusMsg = "Refreshing..."
		return a.refreshListing()
	case "L":
		return a.logout()
	}
	return nil
}

func (a *App) viewDashboard(width int) string {
	snap := a.listing.Snapshot()
	cards := []string{
		statCard("Total", snap.Stats.Total),
		statCard(engineers.StatusLabel(api.StatusPending), snap.Stats.Pending),
		statCard(engineers.StatusLabel(api.StatusApproved), snap.Stats.Approved),
		statCard(engineers.StatusLabel(api.StatusRejected), snap.Stats.Rejected),
		statCard(engineers.StatusLabel(api.StatusVerified), snap.Stats.Verified),
		statCard("On Hold", snap.Stats.OnHold),
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	lines := []string{titleStyle.Render("Dashboard"), a.sessionLine()}
	switch {
	case a.engineers.loading:
		lines = append(lines, a.spinner.View()+" Loading engineers...")
	case snap.Err != nil:
		lines = append(lines, errorStyle.Render(api.UserMessage(snap.Err)))
	case !snap.FetchedAt.IsZero():
		lines = append(lines, mutedStyle.Render("Updated "+snap.FetchedAt.Format("15:04:05")))
	}
	lines = append(lines, "", stats, "", a.renderActivity(width))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// sessionLine describes the signed-in admin from the stored token.
func (a *App) sessionLine() string {
	claims, err := session.Inspect(a.store.Token())
	if err != nil {
		return mutedStyle.Render("Signed in")
	}
	who := claims.Mobile
	if who == "" {
		who = claims.Subject
	}
	line := fmt.Sprintf("Signed in as %s", who)
	if !claims.ExpiresAt.IsZero() {
		line += fmt.Sprintf(" · session expires in %s", time.Until(claims.ExpiresAt).Round(time.Minute))
	}
	return mutedStyle.Render(line)
}

func statCard(label string, value int) string {
	return cardStyle.Width(14).Render(fmt.Sprintf("%s\n%s", mutedStyle.Render(label), titleStyle.Render(fmt.Sprint(value))))
}
