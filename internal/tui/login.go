package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/engadmin/internal/api"
	"github.com/kingrea/engadmin/internal/auth"
)

type loginView struct {
	wizard     auth.Wizard
	mobile     textinput.Model
	otp        textinput.Model
	submitting bool
}

func newDigitInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = "› "
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func newLoginView() loginView {
	return loginView{
		mobile: newDigitInput("10-digit mobile number", auth.MobileLength),
		otp:    newDigitInput("6-digit code", auth.OTPLength),
	}
}

func (l *loginView) reset() {
	l.wizard = auth.Wizard{}
	l.mobile.SetValue("")
	l.otp.SetValue("")
	l.submitting = false
}

// focus points the cursor at the input of the current step.
func (l *loginView) focus() tea.Cmd {
	if l.wizard.Step == auth.StepOTP {
		l.mobile.Blur()
		return l.otp.Focus()
	}
	l.otp.Blur()
	return l.mobile.Focus()
}

func (a *App) updateLogin(msg tea.KeyMsg) tea.Cmd {
	l := &a.login
	if l.submitting {
		return nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		return a.submitLogin()
	case tea.KeyEsc:
		if l.wizard.Step == auth.StepOTP {
			l.wizard.Back()
			l.otp.SetValue("")
			a.statusMsg = ""
			return l.focus()
		}
		return nil
	}

	var cmd tea.Cmd
	if l.wizard.Step == auth.StepOTP {
		l.otp, cmd = l.otp.Update(msg)
		l.wizard.SetOTP(l.otp.Value())
		l.otp.SetValue(l.wizard.OTP)
	} else {
		l.mobile, cmd = l.mobile.Update(msg)
		l.wizard.SetMobile(l.mobile.Value())
		l.mobile.SetValue(l.wizard.Mobile)
	}
	return cmd
}

func (a *App) submitLogin() tea.Cmd {
	l := &a.login
	if !l.wizard.CanSubmit() {
		if l.wizard.Step == auth.StepOTP {
			a.statusMsg = "Enter the 6-digit code"
		} else {
			a.statusMsg = "Enter a valid 10-digit mobile number"
		}
		return nil
	}
	l.submitting = true
	a.statusMsg = ""
	if l.wizard.Step == auth.StepMobile {
		mobile := l.wizard.Mobile
		return tea.Batch(func() tea.Msg {
			challenge, err := a.auth.SendOTP(a.ctx, mobile)
			return otpSentMsg{challenge: challenge, err: err}
		}, a.spinner.Tick)
	}
	identifier, otp := l.wizard.Identifier, l.wizard.OTP
	return tea.Batch(func() tea.Msg {
		return otpVerifiedMsg{err: a.auth.VerifyOTP(a.ctx, identifier, otp)}
	}, a.spinner.Tick)
}

func (a *App) handleOTPSent(msg otpSentMsg) tea.Cmd {
	l := &a.login
	l.submitting = false
	if msg.err != nil {
		a.setError(msg.err)
		return nil
	}
	a.err = nil
	notice := msg.challenge.Message
	if notice == "" {
		notice = "OTP sent"
	}
	l.wizard.CodeSent(msg.challenge.Identifier, notice)
	l.otp.SetValue("")
	a.statusMsg = fmt.Sprintf("%s to %s", notice, l.wizard.Mobile)
	return l.focus()
}

func (a *App) handleOTPVerified(msg otpVerifiedMsg) tea.Cmd {
	l := &a.login
	l.submitting = false
	if msg.err != nil {
		a.setError(msg.err)
		l.wizard.SetOTP("")
		l.otp.SetValue("")
		return nil
	}
	a.err = nil
	a.statusMsg = "Login successful"
	l.reset()
	return a.openDashboard()
}

func (a *App) viewLogin() string {
	l := a.login
	title := titleStyle.Render("Admin Login")
	var body string
	if l.wizard.Step == auth.StepOTP {
		body = lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(fmt.Sprintf("Code sent to %s", l.wizard.Mobile)),
			"",
			"One-time code",
			l.otp.View(),
		)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render("Sign in with your registered admin mobile number."),
			"",
			"Mobile number",
			l.mobile.View(),
		)
	}
	if l.submitting {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", a.spinner.View()+" Please wait...")
	} else if a.err != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", errorStyle.Render(api.UserMessage(a.err)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", body)
}
