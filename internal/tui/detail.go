package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/engadmin/internal/api"
	"github.com/kingrea/engadmin/internal/engineers"
)

var actionKeys = map[string]engineers.Action{
	"k": engineers.ApproveKYC,
	"K": engineers.RejectKYC,
	"b": engineers.ApproveBank,
	"B": engineers.RejectBank,
	"a": engineers.ApproveAll,
	"x": engineers.RejectAll,
	"u": engineers.Unhold,
}

type confirmDialog struct {
	action  engineers.Action
	remarks textarea.Model
}

func newConfirmDialog(action engineers.Action) *confirmDialog {
	d := &confirmDialog{action: action}
	if action.TakesRemarks() {
		ta := textarea.New()
		ta.Placeholder = "Remarks for the engineer (optional)"
		ta.ShowLineNumbers = false
		ta.SetHeight(3)
		ta.SetWidth(60)
		ta.KeyMap.InsertNewline.SetEnabled(false)
		ta.Cursor.SetMode(cursor.CursorStatic)
		ta.Focus()
		d.remarks = ta
	}
	return d
}

func (d *confirmDialog) prompt() string {
	switch d.action {
	case engineers.ApproveAll:
		return "Approve this engineer? All sections are approved and the engineer is synced to the registry."
	case engineers.RejectAll:
		return "Reject this engineer's application?"
	case engineers.RejectKYC:
		return "Reject the KYC documents?"
	case engineers.RejectBank:
		return "Reject the bank details?"
	}
	return fmt.Sprintf("Confirm %s?", d.action)
}

type detailView struct {
	record  *engineers.Record
	dialog  *confirmDialog
	pending engineers.Action
	loading bool
}

func (d *detailView) busy() bool {
	return d.loading || d.pending != engineers.ActionNone
}

func (a *App) openDetail(userID string) tea.Cmd {
	a.screen = screenDetail
	a.detail = &detailView{
		record: engineers.NewRecord(a.client, userID, engineers.WithJournal(a.logbook)),
	}
	return a.loadRecord()
}

func (a *App) loadRecord() tea.Cmd {
	d := a.detail
	if d == nil {
		return nil
	}
	d.loading = true
	rec := d.record
	return tea.Batch(func() tea.Msg {
		return recordLoadedMsg{userID: rec.UserID(), err: rec.Load(a.ctx)}
	}, a.spinner.Tick)
}

func (a *App) handleRecordLoaded(msg recordLoadedMsg) tea.Cmd {
	d := a.detail
	if d == nil || d.record.UserID() != msg.userID {
		return nil
	}
	d.loading = false
	if msg.err != nil {
		if handled, cmd := a.expired(msg.err); handled {
			return cmd
		}
		a.setError(msg.err)
		return nil
	}
	a.err = nil
	return nil
}

func (a *App) updateDetail(msg tea.KeyMsg) tea.Cmd {
	d := a.detail
	if d == nil {
		return nil
	}
	if d.dialog != nil {
		return a.updateDialog(msg)
	}
	key := msg.String()
	switch key {
	case "esc":
		a.detail = nil
		return a.openEngineers()
	case "r":
		if d.busy() {
			return nil
		}
		return a.loadRecord()
	case "L":
		return a.logout()
	}
	action, ok := actionKeys[key]
	if !ok {
		return nil
	}
	if d.pending != engineers.ActionNone {
		a.statusMsg = fmt.Sprintf("Wait for %s to finish", d.pending)
		return nil
	}
	if !d.record.Available(action) {
		a.statusMsg = fmt.Sprintf("Cannot %s right now", action)
		return nil
	}
	if action == engineers.ApproveAll || action.TakesRemarks() {
		d.dialog = newConfirmDialog(action)
		return nil
	}
	return a.startAction(action, "")
}

func (a *App) updateDialog(msg tea.KeyMsg) tea.Cmd {
	d := a.detail
	dlg := d.dialog
	switch msg.Type {
	case tea.KeyEsc:
		d.dialog = nil
		return nil
	case tea.KeyEnter:
		remarks := ""
		if dlg.action.TakesRemarks() {
			remarks = strings.TrimSpace(dlg.remarks.Value())
		}
		d.dialog = nil
		return a.startAction(dlg.action, remarks)
	}
	if !dlg.action.TakesRemarks() {
		return nil
	}
	var cmd tea.Cmd
	dlg.remarks, cmd = dlg.remarks.Update(msg)
	return cmd
}

func (a *App) startAction(action engineers.Action, remarks string) tea.Cmd {
	d := a.detail
	d.pending = action
	a.statusMsg = ""
	rec := d.record
	return tea.Batch(func() tea.Msg {
		result, err := rec.Do(a.ctx, action, remarks)
		return actionDoneMsg{userID: rec.UserID(), action: action, result: result, err: err}
	}, a.spinner.Tick)
}

func (a *App) handleActionDone(msg actionDoneMsg) tea.Cmd {
	if d := a.detail; d != nil && d.record.UserID() == msg.userID && d.pending == msg.action {
		d.pending = engineers.ActionNone
	}
	if msg.err != nil {
		if handled, cmd := a.expired(msg.err); handled {
			return cmd
		}
		if errors.Is(msg.err, engineers.ErrStaleRecord) {
			a.err = msg.err
			a.statusMsg = fmt.Sprintf("%s · press r to reload", successText(msg))
			return a.refreshListing()
		}
		a.setError(msg.err)
		return nil
	}
	a.err = nil
	a.statusMsg = successText(msg)
	return a.refreshListing()
}

func successText(msg actionDoneMsg) string {
	if m := strings.TrimSpace(msg.result.Message); m != "" {
		return m
	}
	return fmt.Sprintf("Done: %s", msg.action)
}

func (a *App) viewDetail(width int) string {
	d := a.detail
	if d == nil {
		return ""
	}
	snap := d.record.Snapshot()
	if snap.Details == nil {
		if d.loading {
			return a.spinner.View() + " Loading engineer..."
		}
		if snap.LoadErr != nil {
			return errorStyle.Render(api.UserMessage(snap.LoadErr))
		}
		return mutedStyle.Render("No details loaded.")
	}
	det := snap.Details
	colWidth := max(24, (width-6)/3)

	header := titleStyle.Render(det.Name())
	if det.Profile != nil {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", statusBadge(det.Profile.Status))
		if det.Profile.Hold {
			header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", holdStyle.Render("ON HOLD"))
		}
	}
	if d.loading {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", a.spinner.View())
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Width(colWidth).Render(profilePanel(det)),
		cardStyle.Width(colWidth).Render(kycPanel(det.KYC)),
		cardStyle.Width(colWidth).Render(bankPanel(det.Bank)),
	)

	sections := []string{header, mutedStyle.Render(det.User.Email), "", panels, "", a.actionsPanel(snap)}
	if snap.ActionErr != nil {
		sections = append(sections, errorStyle.Render(api.UserMessage(snap.ActionErr)))
	}
	if d.dialog != nil {
		sections = append(sections, "", d.dialog.view())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (d *confirmDialog) view() string {
	lines := []string{titleStyle.Render(d.prompt())}
	if d.action.TakesRemarks() {
		lines = append(lines, d.remarks.View())
	}
	lines = append(lines, mutedStyle.Render("Enter → confirm    Esc → cancel"))
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) actionsPanel(snap engineers.RecordSnapshot) string {
	keys := map[engineers.Action]string{}
	for k, action := range actionKeys {
		keys[action] = k
	}
	var parts []string
	for _, action := range engineers.Actions {
		label := fmt.Sprintf("[%s] %s", keys[action], action)
		switch {
		case snap.State(action) == engineers.ActionPending || (a.detail != nil && a.detail.pending == action):
			parts = append(parts, a.spinner.View()+" "+label)
		case snap.Available(action):
			parts = append(parts, label)
		}
	}
	if len(parts) == 0 {
		return mutedStyle.Render("No actions available.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Actions"), strings.Join(parts, "   "))
}

func field(label string, value *string) string {
	v := "—"
	if value != nil {
		v = *value
	}
	return fmt.Sprintf("%s: %s", mutedStyle.Render(label), v)
}

func textField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return fmt.Sprintf("%s: %s", mutedStyle.Render(label), value)
}

func profilePanel(d *api.Details) string {
	lines := []string{titleStyle.Render("Profile")}
	p := d.Profile
	if p == nil {
		return strings.Join(append(lines, mutedStyle.Render("Not submitted")), "\n")
	}
	available := "No"
	if p.Available {
		available = "Yes"
	}
	lines = append(lines,
		textField("Phone", p.Phone),
		textField("Email", p.Email),
		textField("Skills", strings.Join(p.Skills, ", ")),
		textField("Specializations", strings.Join(p.Specializations, ", ")),
		field("Preferred city", p.PreferredCity),
		field("Location", p.CurrentLocation),
		field("Pincode", p.Pincode),
		textField("Available", available),
	)
	return strings.Join(lines, "\n")
}

func kycPanel(k *api.KYC) string {
	lines := []string{titleStyle.Render("KYC")}
	if k == nil {
		return strings.Join(append(lines, mutedStyle.Render("Not submitted")), "\n")
	}
	lines = append(lines,
		"Status: "+statusBadge(k.Status),
		field("Aadhaar", k.AadhaarNumber),
		field("PAN", k.PANNumber),
		field("Address proof type", k.AddressProofType),
		field("Photo", k.PhotoFile),
		field("Address proof", k.AddressProofFile),
	)
	if k.Remarks != nil {
		lines = append(lines, field("Remarks", k.Remarks))
	}
	return strings.Join(lines, "\n")
}

func bankPanel(b *api.Bank) string {
	lines := []string{titleStyle.Render("Bank")}
	if b == nil {
		return strings.Join(append(lines, mutedStyle.Render("Not submitted")), "\n")
	}
	lines = append(lines,
		"Status: "+statusBadge(b.Status),
		field("Bank", b.BankName),
		field("Account", b.AccountNumber),
		field("IFSC", b.IFSCCode),
		field("Proof", b.ProofFile),
	)
	if b.Remarks != nil {
		lines = append(lines, field("Remarks", b.Remarks))
	}
	return strings.Join(lines, "\n")
}
