package engineers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kingrea/engadmin/internal/api"
)

var (
	// ErrActionUnavailable is returned for an action the record's current
	// state does not allow. No request is sent.
	ErrActionUnavailable = errors.New("engineers: action not available")
	// ErrActionInFlight is returned while another action on the same record
	// is outstanding.
	ErrActionInFlight = errors.New("engineers: another action is in progress")
	// ErrStaleRecord wraps a failed re-fetch after a successful action.
	ErrStaleRecord = errors.New("engineers: action applied but record could not be refreshed")
	// ErrNotLoaded is returned for actions before the first successful Load.
	ErrNotLoaded = errors.New("engineers: record not loaded")
)

// Action is an admin decision on a record.
type Action int

const (
	ActionNone Action = iota
	ApproveKYC
	RejectKYC
	ApproveBank
	RejectBank
	ApproveAll
	RejectAll
	Unhold
)

// Actions lists every action in display order.
var Actions = []Action{ApproveKYC, RejectKYC, ApproveBank, RejectBank, ApproveAll, RejectAll, Unhold}

func (a Action) String() string {
	switch a {
	case ApproveKYC:
		return "approve KYC"
	case RejectKYC:
		return "reject KYC"
	case ApproveBank:
		return "approve bank"
	case RejectBank:
		return "reject bank"
	case ApproveAll:
		return "approve all"
	case RejectAll:
		return "reject all"
	case Unhold:
		return "unhold"
	default:
		return "none"
	}
}

// TakesRemarks reports whether the action sends admin remarks.
func (a Action) TakesRemarks() bool {
	return a == RejectKYC || a == RejectBank || a == RejectAll
}

// ActionState is the per-action progress indicator.
type ActionState int

const (
	ActionIdle ActionState = iota
	ActionPending
)

// RecordGateway is the part of the API client a record needs.
type RecordGateway interface {
	EngineerDetails(ctx context.Context, userID string) (api.Details, error)
	ApproveEngineer(ctx context.Context, userID string) (api.ActionResult, error)
	RejectEngineer(ctx context.Context, userID, remarks string) (api.ActionResult, error)
	UnholdEngineer(ctx context.Context, userID string) (api.ActionResult, error)
	UpdateKYCStatus(ctx context.Context, userID string, status api.Status, remarks string) (api.ActionResult, error)
	UpdateBankStatus(ctx context.Context, userID string, status api.Status, remarks string) (api.ActionResult, error)
}

// Journal records admin decisions.
type Journal interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Record is the view-model of one engineer's verification record. Details
// are replaced wholesale by each fetch and never mutated in place.
type Record struct {
	gateway RecordGateway
	userID  string
	journal Journal

	mu        sync.Mutex
	details   *api.Details
	loading   bool
	loadErr   error
	actionErr error
	message   string
	inFlight  Action
}

// RecordOption customizes a Record.
type RecordOption func(*Record)

// WithJournal records every action outcome.
func WithJournal(j Journal) RecordOption {
	return func(r *Record) {
		r.journal = j
	}
}

// NewRecord returns an unloaded record for userID.
func NewRecord(gateway RecordGateway, userID string, opts ...RecordOption) *Record {
	r := &Record{gateway: gateway, userID: userID}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// UserID returns the record key.
func (r *Record) UserID() string {
	return r.userID
}

// RecordSnapshot is a copy of the record state for rendering.
type RecordSnapshot struct {
	UserID    string
	Details   *api.Details
	Loading   bool
	LoadErr   error
	ActionErr error
	Message   string
	InFlight  Action
}

// State returns the progress of a single action.
func (s RecordSnapshot) State(a Action) ActionState {
	if a != ActionNone && s.InFlight == a {
		return ActionPending
	}
	return ActionIdle
}

// Available reports whether a is allowed for the snapshot's details.
func (s RecordSnapshot) Available(a Action) bool {
	return available(s.Details, a)
}

// Snapshot copies the current state.
func (r *Record) Snapshot() RecordSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RecordSnapshot{
		UserID:    r.userID,
		Details:   r.details,
		Loading:   r.loading,
		LoadErr:   r.loadErr,
		ActionErr: r.actionErr,
		Message:   r.message,
		InFlight:  r.inFlight,
	}
}

// Available reports whether a can be started now.
func (r *Record) Available(a Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight == ActionNone && available(r.details, a)
}

// Load fetches the details. A failed fetch keeps whatever was shown before.
func (r *Record) Load(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	details, err := r.gateway.EngineerDetails(ctx, r.userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.loadErr = err
		return err
	}
	r.details = &details
	r.loadErr = nil
	return nil
}

// Do runs one action. Only one action per record may be outstanding. On
// success the record is re-fetched from the backend; a failed re-fetch is
// reported as ErrStaleRecord alongside the successful result.
func (r *Record) Do(ctx context.Context, action Action, remarks string) (api.ActionResult, error) {
	r.mu.Lock()
	switch {
	case r.inFlight != ActionNone:
		r.mu.Unlock()
		return api.ActionResult{}, ErrActionInFlight
	case r.details == nil:
		r.mu.Unlock()
		return api.ActionResult{}, ErrNotLoaded
	case !available(r.details, action):
		r.mu.Unlock()
		return api.ActionResult{}, fmt.Errorf("%w: %s", ErrActionUnavailable, action)
	}
	r.inFlight = action
	r.actionErr = nil
	r.message = ""
	r.mu.Unlock()

	if !action.TakesRemarks() {
		remarks = ""
	}
	result, err := r.send(ctx, action, remarks)
	if err != nil {
		r.mu.Lock()
		r.inFlight = ActionNone
		r.actionErr = err
		r.mu.Unlock()
		r.logError("%s %s failed: %s", action, r.userID, api.UserMessage(err))
		return api.ActionResult{}, err
	}
	r.logInfo("%s %s: %s", action, r.userID, result.Message)

	details, fetchErr := r.gateway.EngineerDetails(ctx, r.userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = ActionNone
	r.message = result.Message
	if fetchErr != nil {
		r.actionErr = fmt.Errorf("%w: %w", ErrStaleRecord, fetchErr)
		return result, r.actionErr
	}
	r.details = &details
	r.loadErr = nil
	return result, nil
}

func (r *Record) send(ctx context.Context, action Action, remarks string) (api.ActionResult, error) {
	switch action {
	case ApproveKYC:
		return r.gateway.UpdateKYCStatus(ctx, r.userID, api.StatusApproved, "")
	case RejectKYC:
		return r.gateway.UpdateKYCStatus(ctx, r.userID, api.StatusRejected, remarks)
	case ApproveBank:
		return r.gateway.UpdateBankStatus(ctx, r.userID, api.StatusApproved, "")
	case RejectBank:
		return r.gateway.UpdateBankStatus(ctx, r.userID, api.StatusRejected, remarks)
	case ApproveAll:
		return r.gateway.ApproveEngineer(ctx, r.userID)
	case RejectAll:
		return r.gateway.RejectEngineer(ctx, r.userID, remarks)
	case Unhold:
		return r.gateway.UnholdEngineer(ctx, r.userID)
	default:
		return api.ActionResult{}, fmt.Errorf("%w: %s", ErrActionUnavailable, action)
	}
}

func available(d *api.Details, a Action) bool {
	if d == nil {
		return false
	}
	hold := d.Profile != nil && d.Profile.Hold
	switch a {
	case ApproveKYC, RejectKYC:
		return d.KYC != nil && d.KYC.Status != api.StatusApproved
	case ApproveBank, RejectBank:
		return d.Bank != nil && d.Bank.Status != api.StatusApproved
	case ApproveAll, RejectAll:
		verified := d.Profile != nil && d.Profile.Status == api.StatusVerified
		return !verified && !hold
	case Unhold:
		return hold
	default:
		return false
	}
}

func (r *Record) logInfo(format string, args ...any) {
	if r.journal != nil {
		r.journal.Info(format, args...)
	}
}

func (r *Record) logError(format string, args ...any) {
	if r.journal != nil {
		r.journal.Error(format, args...)
	}
}
