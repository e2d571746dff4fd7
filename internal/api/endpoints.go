package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SendOTP starts a mobile login and returns the challenge identifier that
// VerifyOTP needs.
func (c *Client) SendOTP(ctx context.Context, mobile string) (OTPChallenge, error) {
	var out OTPChallenge
	body := map[string]string{"mode": "mobile", "mobile": mobile}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &out); err != nil {
		return OTPChallenge{}, err
	}
	return out, nil
}

// VerifyOTP exchanges the code for a credential and stores it.
func (c *Client) VerifyOTP(ctx context.Context, identifier, otp string) (TokenResponse, error) {
	const path = "/auth/verify-otp"
	var out TokenResponse
	body := map[string]string{"identifier": identifier, "otp": otp}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return TokenResponse{}, err
	}
	out.AccessToken = strings.TrimSpace(out.AccessToken)
	if out.AccessToken == "" {
		return TokenResponse{}, &RequestError{
			Status:  http.StatusOK,
			Method:  http.MethodPost,
			Path:    path,
			Message: "Login response did not include an access token",
		}
	}
	if err := c.store.Set(out.AccessToken); err != nil {
		return TokenResponse{}, fmt.Errorf("api: store credential: %w", err)
	}
	return out, nil
}

// Logout forgets the stored credential. The backend keeps no session state,
// so nothing is sent.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// AdminHome probes the admin root; it succeeds only for a valid admin
// credential.
func (c *Client) AdminHome(ctx context.Context) (Message, error) {
	var out Message
	if err := c.do(ctx, http.MethodGet, "/admin/", nil, nil, &out); err != nil {
		return Message{}, err
	}
	return out, nil
}

// ListEngineers returns the raw engineer entries. Both a bare array and an
// {"engineers"|"data"|"items": [...]} envelope are accepted.
func (c *Client) ListEngineers(ctx context.Context) ([]RawEngineer, error) {
	const path = "/admin/engineers"
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	list, err := unwrapEngineers(raw)
	if err != nil {
		return nil, fmt.Errorf("api: decode GET %s: %w", path, err)
	}
	return list, nil
}

func unwrapEngineers(raw json.RawMessage) ([]RawEngineer, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []RawEngineer{}, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []RawEngineer
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return compact(list), nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	for _, key := range []string{"engineers", "data", "items"} {
		inner, ok := envelope[key]
		if !ok {
			continue
		}
		var list []RawEngineer
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, err
		}
		return compact(list), nil
	}
	return nil, fmt.Errorf("unexpected engineers payload")
}

func compact(list []RawEngineer) []RawEngineer {
	out := make([]RawEngineer, 0, len(list))
	for _, entry := range list {
		if entry != nil {
			out = append(out, entry)
		}
	}
	return out
}

// EngineerDetails fetches the composite record for userID.
func (c *Client) EngineerDetails(ctx context.Context, userID string) (Details, error) {
	var out Details
	if err := c.do(ctx, http.MethodGet, engineerPath(userID, ""), nil, nil, &out); err != nil {
		return Details{}, err
	}
	out.normalize()
	return out, nil
}

// ApproveEngineer approves every section and syncs the engineer externally.
func (c *Client) ApproveEngineer(ctx context.Context, userID string) (ActionResult, error) {
	return c.action(ctx, engineerPath(userID, "approve"), nil)
}

// RejectEngineer rejects every section. Blank remarks are not sent.
func (c *Client) RejectEngineer(ctx context.Context, userID, remarks string) (ActionResult, error) {
	return c.action(ctx, engineerPath(userID, "reject"), remarksQuery(nil, remarks))
}

// UnholdEngineer releases an engineer from hold.
func (c *Client) UnholdEngineer(ctx context.Context, userID string) (ActionResult, error) {
	return c.action(ctx, engineerPath(userID, "unhold"), nil)
}

// UpdateKYCStatus approves or rejects the KYC section alone.
func (c *Client) UpdateKYCStatus(ctx context.Context, userID string, status Status, remarks string) (ActionResult, error) {
	return c.sectionStatus(ctx, "kyc", userID, status, remarks)
}

// UpdateBankStatus approves or rejects the bank section alone.
func (c *Client) UpdateBankStatus(ctx context.Context, userID string, status Status, remarks string) (ActionResult, error) {
	return c.sectionStatus(ctx, "bank", userID, status, remarks)
}

func (c *Client) sectionStatus(ctx context.Context, section, userID string, status Status, remarks string) (ActionResult, error) {
	if status != StatusApproved && status != StatusRejected {
		return ActionResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	query := url.Values{"status": {string(status)}}
	path := "/admin/" + section + "/" + url.PathEscape(userID) + "/status"
	return c.action(ctx, path, remarksQuery(query, remarks))
}

func (c *Client) action(ctx context.Context, path string, query url.Values) (ActionResult, error) {
	var out ActionResult
	if err := c.do(ctx, http.MethodPost, path, query, nil, &out); err != nil {
		return ActionResult{}, err
	}
	return out, nil
}

func engineerPath(userID, verb string) string {
	path := "/admin/engineers/" + url.PathEscape(userID)
	if verb != "" {
		path += "/" + verb
	}
	return path
}

func remarksQuery(query url.Values, remarks string) url.Values {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return query
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("remarks", remarks)
	return query
}
