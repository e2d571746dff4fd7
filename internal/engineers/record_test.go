package engineers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/engadmin/internal/api"
)

type sentCall struct {
	op      string
	status  api.Status
	remarks string
}

// fakeRecordGateway serves details from a function so tests can model the
// backend changing state between fetches.
type fakeRecordGateway struct {
	mu      sync.Mutex
	details func(fetch int) (api.Details, error)
	fetches int
	calls   []sentCall
	actErr  error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRecordGateway) EngineerDetails(context.Context, string) (api.Details, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	f.mu.Unlock()
	return f.details(n)
}

func (f *fakeRecordGateway) act(op string, status api.Status, remarks string) (api.ActionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sentCall{op, status, remarks})
	block, started := f.block, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.actErr != nil {
		return api.ActionResult{}, f.actErr
	}
	return api.ActionResult{Message: op + " ok"}, nil
}

func (f *fakeRecordGateway) ApproveEngineer(context.Context, string) (api.ActionResult, error) {
	return f.act("approve", "", "")
}

func (f *fakeRecordGateway) RejectEngineer(_ context.Context, _ string, remarks string) (api.ActionResult, error) {
	return f.act("reject", "", remarks)
}

func (f *fakeRecordGateway) UnholdEngineer(context.Context, string) (api.ActionResult, error) {
	return f.act("unhold", "", "")
}

func (f *fakeRecordGateway) UpdateKYCStatus(_ context.Context, _ string, status api.Status, remarks string) (api.ActionResult, error) {
	return f.act("kyc", status, remarks)
}

func (f *fakeRecordGateway) UpdateBankStatus(_ context.Context, _ string, status api.Status, remarks string) (api.ActionResult, error) {
	return f.act("bank", status, remarks)
}

func details(profile api.Status, hold bool, kyc, bank api.Status) api.Details {
	d := api.Details{
		User:    api.User{ID: "u1"},
		Profile: &api.Profile{Name: "Priya Sharma", Status: profile, Hold: hold},
	}
	if kyc != "" {
		d.KYC = &api.KYC{Status: kyc}
	}
	if bank != "" {
		d.Bank = &api.Bank{Status: bank}
	}
	return d
}

func staticDetails(d api.Details) func(int) (api.Details, error) {
	return func(int) (api.Details, error) { return d, nil }
}

type journalLines struct {
	mu    sync.Mutex
	lines []string
}

func (j *journalLines) Info(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lines = append(j.lines, "INFO "+fmt.Sprintf(format, args...))
}

func (j *journalLines) Error(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lines = append(j.lines, "ERROR "+fmt.Sprintf(format, args...))
}

func TestApproveKYCRefetchesDetails(t *testing.T) {
	gw := &fakeRecordGateway{details: func(n int) (api.Details, error) {
		if n == 1 {
			return details(api.StatusPending, false, api.StatusPending, api.StatusApproved), nil
		}
		return details(api.StatusApproved, false, api.StatusApproved, api.StatusApproved), nil
	}}
	journal := &journalLines{}
	rec := NewRecord(gw, "u1", WithJournal(journal))
	require.NoError(t, rec.Load(context.Background()))
	assert.True(t, rec.Available(ApproveKYC))
	assert.False(t, rec.Available(ApproveBank), "bank already approved")

	result, err := rec.Do(context.Background(), ApproveKYC, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "kyc ok", result.Message)
	assert.Equal(t, []sentCall{{"kyc", api.StatusApproved, ""}}, gw.calls)
	assert.Equal(t, 2, gw.fetches)

	snap := rec.Snapshot()
	assert.Equal(t, api.StatusApproved, snap.Details.KYC.Status, "status comes from the re-fetch")
	assert.Equal(t, api.StatusApproved, snap.Details.Profile.Status)
	assert.Equal(t, "kyc ok", snap.Message)
	assert.Equal(t, ActionIdle, snap.State(ApproveKYC))
	assert.False(t, snap.Available(ApproveKYC))
	assert.Equal(t, []string{"INFO approve KYC u1: kyc ok"}, journal.lines)
}

func TestRejectRemarksPassThrough(t *testing.T) {
	gw := &fakeRecordGateway{details: staticDetails(details(api.StatusPending, false, api.StatusPending, api.StatusPending))}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))

	_, err := rec.Do(context.Background(), RejectBank, "wrong IFSC")
	require.NoError(t, err)
	_, err = rec.Do(context.Background(), RejectKYC, "")
	require.NoError(t, err)
	_, err = rec.Do(context.Background(), RejectAll, "incomplete")
	require.NoError(t, err)

	assert.Equal(t, []sentCall{
		{"bank", api.StatusRejected, "wrong IFSC"},
		{"kyc", api.StatusRejected, ""},
		{"reject", "", "incomplete"},
	}, gw.calls)
}

func TestHoldGatesRecordActions(t *testing.T) {
	held := true
	gw := &fakeRecordGateway{details: func(int) (api.Details, error) {
		return details(api.StatusPending, held, api.StatusPending, api.StatusPending), nil
	}}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))

	assert.False(t, rec.Available(ApproveAll))
	assert.False(t, rec.Available(RejectAll))
	assert.True(t, rec.Available(Unhold))
	_, err := rec.Do(context.Background(), ApproveAll, "")
	assert.ErrorIs(t, err, ErrActionUnavailable)
	assert.Empty(t, gw.calls, "unavailable actions never reach the backend")

	held = false
	_, err = rec.Do(context.Background(), Unhold, "")
	require.NoError(t, err)

	snap := rec.Snapshot()
	assert.False(t, snap.Details.Profile.Hold)
	assert.Equal(t, api.StatusPending, snap.Details.Profile.Status, "unhold leaves status alone")
	assert.True(t, rec.Available(ApproveAll))
	assert.True(t, rec.Available(RejectAll))
	assert.False(t, rec.Available(Unhold))
}

func TestVerifiedProfileBlocksRecordActions(t *testing.T) {
	gw := &fakeRecordGateway{details: staticDetails(details(api.StatusVerified, false, api.StatusApproved, api.StatusApproved))}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))
	for _, a := range Actions {
		assert.False(t, rec.Available(a), a.String())
	}
}

func TestMissingSectionsHaveNoSectionActions(t *testing.T) {
	gw := &fakeRecordGateway{details: staticDetails(details(api.StatusPending, false, "", ""))}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))
	assert.False(t, rec.Available(ApproveKYC))
	assert.False(t, rec.Available(RejectBank))
	assert.True(t, rec.Available(ApproveAll))
}

func TestDoBeforeLoad(t *testing.T) {
	rec := NewRecord(&fakeRecordGateway{}, "u1")
	_, err := rec.Do(context.Background(), ApproveAll, "")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, rec.Available(ApproveAll))
}

func TestSecondActionWhileInFlight(t *testing.T) {
	gw := &fakeRecordGateway{
		details: staticDetails(details(api.StatusPending, false, api.StatusPending, api.StatusPending)),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := rec.Do(context.Background(), ApproveKYC, "")
		done <- err
	}()
	<-gw.started

	snap := rec.Snapshot()
	assert.Equal(t, ActionPending, snap.State(ApproveKYC))
	assert.Equal(t, ActionIdle, snap.State(ApproveBank))
	assert.False(t, rec.Available(ApproveBank))

	_, err := rec.Do(context.Background(), ApproveBank, "")
	assert.ErrorIs(t, err, ErrActionInFlight)
	_, err = rec.Do(context.Background(), ApproveKYC, "")
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(gw.block)
	require.NoError(t, <-done)
	assert.Len(t, gw.calls, 1)
	assert.Equal(t, ActionIdle, rec.Snapshot().State(ApproveKYC))
}

func TestActionFailureKeepsDetails(t *testing.T) {
	backendErr := &api.RequestError{Status: 409, Message: "Engineer is on hold"}
	gw := &fakeRecordGateway{
		details: staticDetails(details(api.StatusPending, false, api.StatusPending, api.StatusPending)),
		actErr:  backendErr,
	}
	journal := &journalLines{}
	rec := NewRecord(gw, "u1", WithJournal(journal))
	require.NoError(t, rec.Load(context.Background()))
	before := rec.Snapshot().Details

	_, err := rec.Do(context.Background(), ApproveAll, "")
	require.ErrorIs(t, err, backendErr)

	snap := rec.Snapshot()
	assert.Same(t, before, snap.Details)
	assert.Equal(t, 1, gw.fetches, "no re-fetch after a failed action")
	assert.ErrorIs(t, snap.ActionErr, backendErr)
	assert.Equal(t, ActionIdle, snap.State(ApproveAll))
	assert.Equal(t, []string{"ERROR approve all u1 failed: Engineer is on hold"}, journal.lines)
}

func TestRefetchFailureReportsStaleRecord(t *testing.T) {
	fetchErr := errors.New("network down")
	gw := &fakeRecordGateway{details: func(n int) (api.Details, error) {
		if n == 1 {
			return details(api.StatusPending, false, api.StatusPending, api.StatusPending), nil
		}
		return api.Details{}, fetchErr
	}}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))

	result, err := rec.Do(context.Background(), ApproveAll, "")
	assert.Equal(t, "approve ok", result.Message)
	assert.ErrorIs(t, err, ErrStaleRecord)
	assert.ErrorIs(t, err, fetchErr)

	snap := rec.Snapshot()
	assert.Equal(t, api.StatusPending, snap.Details.Profile.Status)
	assert.Equal(t, "approve ok", snap.Message)
}

func TestLoadFailureKeepsPreviousDetails(t *testing.T) {
	gw := &fakeRecordGateway{details: func(n int) (api.Details, error) {
		if n == 1 {
			return details(api.StatusPending, false, "", ""), nil
		}
		return api.Details{}, errors.New("timeout")
	}}
	rec := NewRecord(gw, "u1")
	require.NoError(t, rec.Load(context.Background()))
	require.Error(t, rec.Load(context.Background()))

	snap := rec.Snapshot()
	require.NotNil(t, snap.Details)
	assert.EqualError(t, snap.LoadErr, "timeout")
	assert.False(t, snap.Loading)
}

func TestActionRemarksFlag(t *testing.T) {
	for _, a := range Actions {
		want := a == RejectKYC || a == RejectBank || a == RejectAll
		assert.Equal(t, want, a.TakesRemarks(), a.String())
	}
}
