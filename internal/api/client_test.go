package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/engadmin/internal/session"
)

type countingStore struct {
	session.Store
	clears atomic.Int32
}

func (s *countingStore) Clear() error {
	s.clears.Add(1)
	return s.Store.Clear()
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *countingStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := &countingStore{Store: session.NewMemoryStore(token)}
	client := New(srv.URL+"/", store, WithRequestIDs(func() string { return "req-1" }))
	return client, store
}

func TestRequestHeadersCarryCredential(t *testing.T) {
	var seen http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		assert.Equal(t, "/admin/", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"Welcome Admin"}`)
	}, "tok")

	msg, err := client.AdminHome(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome Admin", msg.Message)
	assert.Equal(t, "Bearer tok", seen.Get("Authorization"))
	assert.Equal(t, "application/json", seen.Get("Accept"))
	assert.Equal(t, "req-1", seen.Get(RequestIDHeader))
}

func TestNoAuthorizationHeaderWithoutCredential(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"identifier":"9876543210","is_new_user":false,"message":"OTP sent"}`)
	}, "")

	challenge, err := client.SendOTP(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", challenge.Identifier)
	assert.Equal(t, "OTP sent", challenge.Message)
}

func TestSendOTPBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"mode": "mobile", "mobile": "9876543210"}, body)
		_, _ = io.WriteString(w, `{"identifier":"id-1"}`)
	}, "")

	_, err := client.SendOTP(context.Background(), "9876543210")
	require.NoError(t, err)
}

func TestVerifyOTPStoresToken(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "id-1", body["identifier"])
		assert.Equal(t, "123456", body["otp"])
		_, _ = io.WriteString(w, `{"access_token":"T"}`)
	}, "")

	resp, err := client.VerifyOTP(context.Background(), "id-1", "123456")
	require.NoError(t, err)
	assert.Equal(t, "T", resp.AccessToken)
	assert.Equal(t, "T", store.Token())
}

func TestVerifyOTPEmptyTokenFails(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"access_token":""}`)
	}, "")

	_, err := client.VerifyOTP(context.Background(), "id-1", "123456")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Empty(t, store.Token())
}

func TestUnauthorizedClearsCredentialOnce(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Invalid token"}`)
	}, "stale")
	var calls []string
	client.OnUnauthorized(func() { calls = append(calls, "first") })
	client.OnUnauthorized(func() { calls = append(calls, "second") })

	_, err := client.ListEngineers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	var unauth *UnauthorizedError
	require.ErrorAs(t, err, &unauth)
	assert.Equal(t, "/admin/engineers", unauth.Path)
	assert.Empty(t, store.Token())
	assert.Equal(t, int32(1), store.clears.Load())
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestRequestErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"Invalid OTP"}`, "Invalid OTP"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","mobile"],"msg":"field required"}]}`, "field required"},
		{"message", http.StatusConflict, `{"message":"Engineer is on hold"}`, "Engineer is on hold"},
		{"empty body", http.StatusInternalServerError, ``, genericFailure},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, genericFailure},
		{"blank detail", http.StatusNotFound, `{"detail":"  "}`, genericFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, "tok")

			_, err := client.EngineerDetails(context.Background(), "u1")
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tc.status, reqErr.Status)
			assert.Equal(t, tc.want, reqErr.Message)
			assert.Equal(t, tc.want, UserMessage(err))
			assert.False(t, errors.Is(err, ErrUnauthorized))
			assert.Equal(t, "tok", store.Token(), "non-401 failures keep the credential")
		})
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url, session.NewMemoryStore("tok"))
	_, err := client.AdminHome(context.Background())
	require.Error(t, err)
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "tok", client.Store().Token())
}

func TestListEngineersShapes(t *testing.T) {
	cases := map[string]string{
		"array":     `[{"user_id":"u1"},{"user_id":"u2"}]`,
		"engineers": `{"engineers":[{"user_id":"u1"},{"user_id":"u2"}]}`,
		"data":      `{"data":[{"user_id":"u1"},null,{"user_id":"u2"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}, "tok")
			list, err := client.ListEngineers(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "u1", list[0]["user_id"])
			assert.Equal(t, "u2", list[1]["user_id"])
		})
	}
}

func TestEngineerDetailsNormalizes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/engineers/u%201", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{
			"user": {"id": "u 1", "email": "a@example.com", "role": "engineer"},
			"profile": {"name": "Priya Sharma", "status": "", "skills": ["HVAC"], "isAvailable": true, "is_hold": true, "pincode": ""},
			"kyc": {"status": "APPROVED", "pan_number": "ABCDE1234F", "photo_file": ""},
			"bank": null
		}`)
	}, "tok")

	details, err := client.EngineerDetails(context.Background(), "u 1")
	require.NoError(t, err)
	require.NotNil(t, details.Profile)
	assert.Equal(t, "Priya Sharma", details.Name())
	assert.Equal(t, StatusPending, details.Profile.Status)
	assert.True(t, details.Profile.Available)
	assert.True(t, details.Profile.Hold)
	assert.Nil(t, details.Profile.Pincode)
	require.NotNil(t, details.KYC)
	assert.Equal(t, StatusApproved, details.KYC.Status)
	assert.Nil(t, details.KYC.PhotoFile)
	require.NotNil(t, details.KYC.PANNumber)
	assert.Nil(t, details.Bank)
}

func TestActionEndpoints(t *testing.T) {
	type call struct{ method, path, query string }
	var got []call
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, call{r.Method, r.URL.Path, r.URL.RawQuery})
		_, _ = io.WriteString(w, `{"message":"ok","external_response":{"ref":"x"}}`)
	}, "tok")
	ctx := context.Background()

	res, err := client.ApproveEngineer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Message)
	assert.JSONEq(t, `{"ref":"x"}`, string(res.ExternalResponse))

	_, err = client.RejectEngineer(ctx, "u1", "  ")
	require.NoError(t, err)
	_, err = client.RejectEngineer(ctx, "u1", " blurry ")
	require.NoError(t, err)
	_, err = client.UnholdEngineer(ctx, "u1")
	require.NoError(t, err)
	_, err = client.UpdateKYCStatus(ctx, "u1", StatusApproved, "")
	require.NoError(t, err)
	_, err = client.UpdateBankStatus(ctx, "u1", StatusRejected, "wrong IFSC")
	require.NoError(t, err)
	_, err = client.UpdateKYCStatus(ctx, "u1", StatusRejected, "  ")
	require.NoError(t, err)

	assert.Equal(t, []call{
		{http.MethodPost, "/admin/engineers/u1/approve", ""},
		{http.MethodPost, "/admin/engineers/u1/reject", ""},
		{http.MethodPost, "/admin/engineers/u1/reject", "remarks=blurry"},
		{http.MethodPost, "/admin/engineers/u1/unhold", ""},
		{http.MethodPost, "/admin/kyc/u1/status", "status=approved"},
		{http.MethodPost, "/admin/bank/u1/status", "remarks=wrong+IFSC&status=rejected"},
		{http.MethodPost, "/admin/kyc/u1/status", "status=rejected"},
	}, got)
}

func TestTimeoutSurvivesOptionOrder(t *testing.T) {
	custom := &http.Client{}
	before := New("http://backend", nil, WithTimeout(3*time.Second), WithHTTPClient(custom))
	after := New("http://backend", nil, WithHTTPClient(custom), WithTimeout(3*time.Second))

	assert.Equal(t, 3*time.Second, before.http.Timeout)
	assert.Equal(t, 3*time.Second, after.http.Timeout)
	assert.Zero(t, custom.Timeout, "caller's client must not be mutated")

	plain := New("http://backend", nil, WithHTTPClient(custom))
	assert.Same(t, custom, plain.http)
}

func TestSectionStatusRejectsInvalidStatus(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, "tok")

	for _, status := range []Status{StatusPending, StatusVerified, "bogus"} {
		_, err := client.UpdateKYCStatus(context.Background(), "u1", status, "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		_, err = client.UpdateBankStatus(context.Background(), "u1", status, "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	}
	assert.Zero(t, hits.Load())
}

func TestLogoutClearsWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, "tok")

	require.NoError(t, client.Logout())
	assert.Empty(t, store.Token())
	assert.Zero(t, hits.Load())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusPending, ParseStatus(""))
	assert.Equal(t, StatusPending, ParseStatus("on_hold"))
	assert.Equal(t, StatusApproved, ParseStatus(" Approved "))
	assert.Equal(t, StatusVerified, ParseStatus("verified"))
	assert.Equal(t, StatusRejected, ParseStatus("REJECTED"))
}
