// internal/tui/app.go
//
// This is the terminal dashboard for engadmin.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the App struct and the view-models it owns
// 2. Update: turns key presses and finished requests into new state
// 3. View: renders the current screen to a string
//
// Every backend call runs inside a tea.Cmd and reports back with a typed
// message, so Update never blocks on the network.

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/engadmin/internal/api"
	"github.com/kingrea/engadmin/internal/auth"
	"github.com/kingrea/engadmin/internal/config"
	"github.com/kingrea/engadmin/internal/engineers"
	"github.com/kingrea/engadmin/internal/logbook"
	"github.com/kingrea/engadmin/internal/session"
)

// screen represents which view is active.
type screen int

const (
	screenLoading   screen = iota // probing a stored credential
	screenLogin                   // mobile -> OTP wizard
	screenDashboard               // counters and recent activity
	screenEngineers               // searchable listing
	screenDetail                  // one verification record
)

const activityLines = 8

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithStore overrides the credential store (default: file store in the
// state directory).
func WithStore(store session.Store) AppOption {
	return func(a *App) {
		if store != nil {
			a.store = store
		}
	}
}

// WithDebugLogger routes request traces to l.
func WithDebugLogger(l api.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.debug = l
		}
	}
}

// WithContext sets the parent context for backend calls.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	screen  screen
	config  *config.Config
	store   session.Store
	client  *api.Client
	auth    *auth.Manager
	listing *engineers.Listing
	logbook *logbook.Logbook
	debug   api.Logger
	ctx     context.Context

	login     loginView
	engineers engineersView
	detail    *detailView
	spinner   spinner.Model

	statusMsg string
	err       error

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// Messages returned by commands.
type (
	bootstrapMsg struct{ state auth.State }

	otpSentMsg struct {
		challenge api.OTPChallenge
		err       error
	}

	otpVerifiedMsg struct{ err error }

	listingLoadedMsg struct{ err error }

	recordLoadedMsg struct {
		userID string
		err    error
	}

	actionDoneMsg struct {
		userID string
		action engineers.Action
		result api.ActionResult
		err    error
	}
)

// NewApp wires the client, session manager and view-models for cfg.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("tui: config is required")
	}
	lb, err := logbook.New(cfg.ActivityLogPath())
	if err != nil {
		return nil, fmt.Errorf("tui: open activity log: %w", err)
	}
	app := &App{
		screen:  screenLoading,
		config:  cfg,
		logbook: lb,
		ctx:     context.Background(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.store == nil {
		app.store = session.NewFileStore(cfg.StateDir())
	}
	clientOpts := []api.Option{api.WithTimeout(cfg.APITimeout())}
	if app.debug != nil {
		clientOpts = append(clientOpts, api.WithLogger(app.debug))
	}
	app.client = api.New(cfg.BaseURL(), app.store, clientOpts...)
	app.auth = auth.New(app.client, app.store, auth.WithJournal(lb))
	if app.debug != nil {
		app.auth.Subscribe(func(s auth.State) {
			app.debug.Printf("tui: session %s", s)
		})
	}
	app.listing = engineers.NewListing(app.client, cfg.DefaultStatus())
	app.login = newLoginView()
	app.engineers = newEngineersView(cfg.DefaultStatus())
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.bootstrap(), a.spinner.Tick)
}

func (a *App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		return bootstrapMsg{state: a.auth.Bootstrap(a.ctx)}
	}
}

// busy reports whether a spinner should be animating.
func (a *App) busy() bool {
	switch a.screen {
	case screenLoading:
		return true
	case screenLogin:
		return a.login.submitting
	case screenDashboard, screenEngineers:
		return a.engineers.loading
	case screenDetail:
		return a.detail != nil && a.detail.busy()
	}
	return false
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.engineers.setSize(max(20, msg.Width-6), max(5, msg.Height-14))
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case bootstrapMsg:
		if msg.state == auth.StateAuthenticated {
			a.statusMsg = "Session restored"
			return a, a.openDashboard()
		}
		return a.toLogin("")

	case otpSentMsg:
		return a, a.handleOTPSent(msg)

	case otpVerifiedMsg:
		return a, a.handleOTPVerified(msg)

	case listingLoadedMsg:
		return a, a.handleListingLoaded(msg)

	case recordLoadedMsg:
		return a, a.handleRecordLoaded(msg)

	case actionDoneMsg:
		return a, a.handleActionDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case screenLogin:
		return a, a.updateLogin(msg)
	case screenDashboard:
		return a, a.updateDashboard(msg)
	case screenEngineers:
		return a, a.updateEngineers(msg)
	case screenDetail:
		return a, a.updateDetail(msg)
	}
	return a, nil
}

// expired moves to the login screen when err is a 401. The client has
// already cleared the credential by the time the message arrives.
func (a *App) expired(err error) (bool, tea.Cmd) {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false, nil
	}
	_, cmd := a.toLogin("Session expired. Please log in again.")
	return true, cmd
}

func (a *App) toLogin(status string) (tea.Model, tea.Cmd) {
	a.screen = screenLogin
	a.detail = nil
	a.login.reset()
	a.err = nil
	a.statusMsg = status
	return a, a.login.focus()
}

func (a *App) logout() tea.Cmd {
	if err := a.auth.Logout(); err != nil {
		a.logError("Logout failed: %v", err)
	}
	_, cmd := a.toLogin("Signed out")
	return cmd
}

func (a *App) setError(err error) {
	a.err = err
	if err != nil {
		a.statusMsg = api.UserMessage(err)
	}
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.screen {
	case screenLoading:
		content = fmt.Sprintf("%s Checking session...", a.spinner.View())
	case screenLogin:
		content = a.viewLogin()
	case screenDashboard:
		content = a.viewDashboard(width - 4)
	case screenEngineers:
		content = a.viewEngineers(width - 4)
	case screenDetail:
		content = a.viewDetail(width - 4)
	}
	return a.renderFrame(content, width)
}

func (a *App) renderFrame(content string, width int) string {
	header := headerStyle.Render("◆ ENGINEER ADMIN")
	if a.screen != screenLoading && a.screen != screenLogin {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", mutedStyle.Render(a.client.BaseURL()))
	}
	body := panelStyle.Width(max(20, width-2)).Render(content)
	footer := footerStyle.Render(a.statusMsg)
	hints := hintStyle.Render(a.keyHints())
	return strings.Join([]string{header, body, hints, footer}, "\n")
}

func (a *App) keyHints() string {
	switch a.screen {
	case screenLogin:
		if a.login.wizard.Step == auth.StepOTP {
			return "Enter → verify    Esc → change mobile number    Ctrl+C → quit"
		}
		return "Enter → send OTP    Ctrl+C → quit"
	case screenDashboard:
		return "e → engineers    r → refresh    L → logout    q → quit"
	case screenEngineers:
		return "/ → search    s → status filter    Enter → open    r → refresh    Esc → back"
	case screenDetail:
		return "k/K → KYC ✓/✗    b/B → bank ✓/✗    a/x → approve/reject all    u → unhold    r → refresh    Esc → back"
	}
	return ""
}

func (a *App) renderActivity(width int) string {
	if a.logbook == nil {
		return ""
	}
	entries := a.logbook.Recent(activityLines)
	title := titleStyle.Render("Recent Activity · " + filepath.Base(a.logbook.Path()))
	if len(entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No activity yet."))
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s %s %s",
			mutedStyle.Render(e.Time.Local().Format("15:04:05")),
			levelBadge(e.Level),
			e.Message,
		)
	}
	body := lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
