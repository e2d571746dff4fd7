package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kingrea/engadmin/internal/api"
)

const otpPrefix = "otp:"

type registerRequest struct {
	Mode   string `json:"mode"`
	Mobile string `json:"mobile"`
}

type verifyRequest struct {
	Identifier string `json:"identifier"`
	OTP        string `json:"otp"`
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeValidation(w, "body", "body", "invalid JSON body")
		return
	}
	if req.Mode != "" && req.Mode != "mobile" {
		writeValidation(w, "mode", "body", "only mobile login is supported")
		return
	}
	if !isDigits(req.Mobile, 10) {
		writeValidation(w, "mobile", "body", "mobile must be exactly 10 digits")
		return
	}
	s.logger.Printf("mockapi: otp for %s is %s", req.Mobile, s.settings.OTP)
	writeJSON(w, http.StatusOK, api.OTPChallenge{
		Identifier: otpPrefix + req.Mobile,
		IsNewUser:  false,
		Message:    "OTP sent successfully",
	})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeValidation(w, "body", "body", "invalid JSON body")
		return
	}
	mobile, ok := strings.CutPrefix(req.Identifier, otpPrefix)
	if !ok || !isDigits(mobile, 10) {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired identifier")
		return
	}
	if req.OTP != s.settings.OTP {
		writeDetail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	token, err := s.mintToken(mobile)
	if err != nil {
		s.logger.Printf("mockapi: mint token: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token})
}

func (s *Server) handleAdminHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Message{Message: "Welcome Admin " + adminSubject(r.Context())})
}

func (s *Server) handleListEngineers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.data.list())
}

func (s *Server) handleEngineerDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.data.details(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var external map[string]any
	err := s.data.update(id, func(e *engineer) error {
		if e.details.Profile.Hold {
			return errOnHold
		}
		e.details.Profile.Status = api.StatusVerified
		if e.details.KYC != nil {
			e.details.KYC.Status = api.StatusApproved
			e.details.KYC.Remarks = nil
		}
		if e.details.Bank != nil {
			e.details.Bank.Status = api.StatusApproved
			e.details.Bank.Remarks = nil
		}
		external = map[string]any{
			"system":    "engineer-registry",
			"reference": uuid.NewString(),
			"user_id":   id,
			"synced_at": s.now().Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	raw, _ := json.Marshal(external)
	writeJSON(w, http.StatusOK, api.ActionResult{
		Message:          "Engineer approved and synced successfully",
		ExternalResponse: raw,
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	remarks := optional(strings.TrimSpace(r.URL.Query().Get("remarks")))
	err := s.data.update(id, func(e *engineer) error {
		if e.details.Profile.Hold {
			return errOnHold
		}
		e.details.Profile.Status = api.StatusRejected
		if e.details.KYC != nil {
			e.details.KYC.Status = api.StatusRejected
			e.details.KYC.Remarks = remarks
		}
		if e.details.Bank != nil {
			e.details.Bank.Status = api.StatusRejected
			e.details.Bank.Remarks = remarks
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ActionResult{Message: "Engineer application rejected"})
}

func (s *Server) handleUnhold(w http.ResponseWriter, r *http.Request) {
	err := s.data.update(mux.Vars(r)["id"], func(e *engineer) error {
		if !e.details.Profile.Hold {
			return errNotHeld
		}
		e.details.Profile.Hold = false
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ActionResult{Message: "Engineer released from hold"})
}

func (s *Server) handleSectionStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	section, id := vars["section"], vars["id"]
	query := r.URL.Query()
	status := api.Status(strings.ToLower(strings.TrimSpace(query.Get("status"))))
	if status != api.StatusApproved && status != api.StatusRejected {
		writeValidation(w, "status", "query", "status must be approved or rejected")
		return
	}
	remarks := optional(strings.TrimSpace(query.Get("remarks")))
	err := s.data.update(id, func(e *engineer) error {
		switch section {
		case "kyc":
			if e.details.KYC == nil {
				return errNoKYC
			}
			e.details.KYC.Status = status
			e.details.KYC.Remarks = remarks
		default:
			if e.details.Bank == nil {
				return errNoBank
			}
			e.details.Bank.Status = status
			e.details.Bank.Remarks = remarks
		}
		e.deriveStatus()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	label := "KYC"
	if section == "bank" {
		label = "Bank details"
	}
	writeJSON(w, http.StatusOK, api.ActionResult{Message: label + " " + string(status)})
}
