package api

import (
	"encoding/json"
	"strings"
)

// Status is a verification status as reported by the backend.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusVerified only applies to profiles: every section approved and the
	// engineer synchronised to the external system of record.
	StatusVerified Status = "verified"
)

// ParseStatus normalises a backend status. Empty and unknown values read as
// pending.
func ParseStatus(raw string) Status {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusApproved, StatusRejected, StatusVerified, StatusPending:
		return s
	default:
		return StatusPending
	}
}

// UnmarshalText normalises statuses while decoding.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// OTPChallenge is the response to POST /auth/register.
type OTPChallenge struct {
	Identifier string `json:"identifier"`
	IsNewUser  bool   `json:"is_new_user"`
	Message    string `json:"message"`
}

// TokenResponse is the response to POST /auth/verify-otp.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Message is the generic {"message": "..."} payload.
type Message struct {
	Message string `json:"message"`
}

// ActionResult is returned by every approve/reject/unhold call.
type ActionResult struct {
	Message          string          `json:"message"`
	ExternalResponse json.RawMessage `json:"external_response,omitempty"`
}

// RawEngineer is one loosely typed entry of GET /admin/engineers. Field names
// vary between backend versions; see engineers.Normalize.
type RawEngineer map[string]any

// User is the account behind an engineer record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Profile holds identity, contact and skill attributes.
type Profile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Skills          []string `json:"skills"`
	Specializations []string `json:"specializations"`
	PreferredCity   *string  `json:"preferred_city"`
	CurrentLocation *string  `json:"current_location"`
	Pincode         *string  `json:"pincode"`
	Available       bool     `json:"isAvailable"`
	Status          Status   `json:"status"`
	Hold            bool     `json:"is_hold"`
}

// KYC holds identity documents. Document fields are nil until submitted.
type KYC struct {
	ID               string  `json:"id"`
	Status           Status  `json:"status"`
	AadhaarNumber    *string `json:"aadhaar_number"`
	PANNumber        *string `json:"pan_number"`
	AddressProofType *string `json:"address_proof_type"`
	Remarks          *string `json:"remarks"`
	PhotoFile        *string `json:"photo_file"`
	AddressProofFile *string `json:"address_proof_file"`
}

// Bank holds payout account details.
type Bank struct {
	ID            string  `json:"id"`
	BankName      *string `json:"bank_name"`
	AccountNumber *string `json:"account_number"`
	IFSCCode      *string `json:"ifsc_code"`
	Status        Status  `json:"status"`
	Remarks       *string `json:"remarks"`
	ProofFile     *string `json:"proof_file"`
}

// Details is the composite record of GET /admin/engineers/{id}. A nil
// section has not been submitted yet.
type Details struct {
	User    User     `json:"user"`
	Profile *Profile `json:"profile"`
	KYC     *KYC     `json:"kyc"`
	Bank    *Bank    `json:"bank"`
}

// Name returns the profile name or a placeholder.
func (d Details) Name() string {
	if d.Profile != nil && strings.TrimSpace(d.Profile.Name) != "" {
		return strings.TrimSpace(d.Profile.Name)
	}
	return "Unknown Engineer"
}

// normalize fills missing statuses and drops blank optional strings so that
// nil consistently means "not provided".
func (d *Details) normalize() {
	if p := d.Profile; p != nil {
		p.Status = ParseStatus(string(p.Status))
		blankToNil(&p.PreferredCity, &p.CurrentLocation, &p.Pincode)
	}
	if k := d.KYC; k != nil {
		k.Status = ParseStatus(string(k.Status))
		blankToNil(&k.AadhaarNumber, &k.PANNumber, &k.AddressProofType, &k.Remarks, &k.PhotoFile, &k.AddressProofFile)
	}
	if b := d.Bank; b != nil {
		b.Status = ParseStatus(string(b.Status))
		blankToNil(&b.BankName, &b.AccountNumber, &b.IFSCCode, &b.Remarks, &b.ProofFile)
	}
}

func blankToNil(fields ...**string) {
	for _, field := range fields {
		if *field != nil && strings.TrimSpace(**field) == "" {
			*field = nil
		}
	}
}
