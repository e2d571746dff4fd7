package mockapi

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/kingrea/engadmin/internal/api"
)

// httpError is a failure with the status and detail the backend answers with.
type httpError struct {
	status int
	detail string
}

func (e *httpError) Error() string {
	return e.detail
}

var (
	errNotFound = &httpError{http.StatusNotFound, "Engineer not found"}
	errOnHold   = &httpError{http.StatusConflict, "Engineer is on hold. Release the hold before approving or rejecting."}
	errNotHeld  = &httpError{http.StatusConflict, "Engineer is not on hold"}
	errNoKYC    = &httpError{http.StatusNotFound, "KYC details not submitted"}
	errNoBank   = &httpError{http.StatusNotFound, "Bank details not submitted"}
)

// engineer is one record of the in-memory dataset.
type engineer struct {
	listingID       string
	skillCategory   string
	specializations []string
	details         api.Details
}

func (e *engineer) listingEntry() map[string]any {
	p := e.details.Profile
	return map[string]any{
		"id":              e.listingID,
		"user_id":         e.details.User.ID,
		"user":            map[string]any{"email": e.details.User.Email, "role": e.details.User.Role},
		"name":            p.Name,
		"phone":           p.Phone,
		"status":          string(p.Status),
		"is_hold":         p.Hold,
		"skill_category":  e.skillCategory,
		"specializations": e.specializations,
	}
}

// deriveStatus recomputes the profile status after a section decision.
// A verified profile only changes through approve/reject all.
func (e *engineer) deriveStatus() {
	p, k, b := e.details.Profile, e.details.KYC, e.details.Bank
	if p.Status == api.StatusVerified {
		return
	}
	switch {
	case (k != nil && k.Status == api.StatusRejected) || (b != nil && b.Status == api.StatusRejected):
		p.Status = api.StatusRejected
	case k != nil && b != nil && k.Status == api.StatusApproved && b.Status == api.StatusApproved:
		p.Status = api.StatusApproved
	default:
		p.Status = api.StatusPending
	}
}

// dataset is the mutable engineer store behind the admin routes.
type dataset struct {
	mu        sync.Mutex
	engineers map[string]*engineer
}

func newDataset(seed []*engineer) *dataset {
	d := &dataset{engineers: make(map[string]*engineer, len(seed))}
	for _, e := range seed {
		d.engineers[e.details.User.ID] = e
	}
	return d
}

func (d *dataset) list() []map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.engineers))
	for id := range d.engineers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.engineers[id].listingEntry())
	}
	return out
}

func (d *dataset) details(userID string) (api.Details, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.engineers[userID]
	if !ok {
		return api.Details{}, errNotFound
	}
	return cloneDetails(e.details), nil
}

// update runs fn on the engineer under the dataset lock.
func (d *dataset) update(userID string, fn func(*engineer) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.engineers[userID]
	if !ok {
		return errNotFound
	}
	return fn(e)
}

func cloneDetails(src api.Details) api.Details {
	out := api.Details{User: src.User}
	if src.Profile != nil {
		p := *src.Profile
		p.Skills = append([]string(nil), p.Skills...)
		p.Specializations = append([]string(nil), p.Specializations...)
		out.Profile = &p
	}
	if src.KYC != nil {
		k := *src.KYC
		out.KYC = &k
	}
	if src.Bank != nil {
		b := *src.Bank
		out.Bank = &b
	}
	return out
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

const (
	samplePhoto        = "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400&h=400&fit=crop"
	sampleAddressProof = "https://images.unsplash.com/photo-1554224155-6726b3ff858f?w=600&h=400&fit=crop"
)

// seedEngineers returns the fixture dataset.
func seedEngineers() []*engineer {
	return []*engineer{
		{
			listingID:       "1",
			skillCategory:   "HVAC",
			specializations: []string{"AC Repair", "Installation", "Maintenance"},
			details: api.Details{
				User: api.User{ID: "user1", Email: "rajesh.kumar@email.com", Role: "engineer"},
				Profile: &api.Profile{
					ID: "profile1", Name: "Rajesh Kumar", Phone: "+91 98765 43210",
					Email: "rajesh.kumar@email.com", Skills: []string{"HVAC"},
					Specializations: []string{"AC Repair", "Installation", "Maintenance"},
					PreferredCity:   optional("Bengaluru"), Pincode: optional("560001"),
					Available: true, Status: api.StatusPending,
				},
				KYC: &api.KYC{
					ID: "kyc1", Status: api.StatusPending,
					AadhaarNumber: optional("XXXX-XXXX-4321"), PANNumber: optional("ABCPK1234D"),
					AddressProofType: optional("utility_bill"),
					PhotoFile:        optional(samplePhoto), AddressProofFile: optional(sampleAddressProof),
				},
				Bank: &api.Bank{
					ID: "bank1", Status: api.StatusPending,
					BankName: optional("State Bank of India"), AccountNumber: optional("XXXXXX7890"),
					IFSCCode: optional("SBIN0000123"), ProofFile: optional(sampleAddressProof),
				},
			},
		},
		{
			listingID:       "2",
			skillCategory:   "Electrical",
			specializations: []string{"Wiring", "Panel Installation"},
			details: api.Details{
				User: api.User{ID: "user2", Email: "priya.sharma@email.com", Role: "engineer"},
				Profile: &api.Profile{
					ID: "profile2", Name: "Priya Sharma", Phone: "+91 87654 32109",
					Email: "priya.sharma@email.com", Skills: []string{"Electrical"},
					Specializations: []string{"Wiring", "Panel Installation"},
					CurrentLocation: optional("Pune"), Available: true, Status: api.StatusApproved,
				},
				KYC: &api.KYC{
					ID: "kyc2", Status: api.StatusApproved,
					PANNumber: optional("BCDPS2345E"), PhotoFile: optional(samplePhoto),
				},
				Bank: &api.Bank{
					ID: "bank2", Status: api.StatusApproved,
					BankName: optional("HDFC Bank"), IFSCCode: optional("HDFC0001234"),
				},
			},
		},
		{
			listingID:       "3",
			skillCategory:   "Plumbing",
			specializations: []string{"Pipe Fitting", "Leak Repair"},
			details: api.Details{
				User: api.User{ID: "user3", Email: "amit.singh@email.com", Role: "engineer"},
				Profile: &api.Profile{
					ID: "profile3", Name: "Amit Singh", Phone: "+91 76543 21098",
					Email: "amit.singh@email.com", Skills: []string{"Plumbing"},
					Specializations: []string{"Pipe Fitting", "Leak Repair"},
					Status:          api.StatusRejected,
				},
				KYC: &api.KYC{
					ID: "kyc3", Status: api.StatusRejected,
					Remarks:          optional("Address proof is unreadable"),
					AddressProofFile: optional(sampleAddressProof),
				},
				Bank: &api.Bank{ID: "bank3", Status: api.StatusPending, BankName: optional("ICICI Bank")},
			},
		},
		{
			listingID:       "4",
			skillCategory:   "Carpentry",
			specializations: []string{"Furniture", "Cabinet Making"},
			details: api.Details{
				User: api.User{ID: "user4", Email: "neha.verma@email.com", Role: "engineer"},
				Profile: &api.Profile{
					ID: "profile4", Name: "Neha Verma", Phone: "+91 65432 10987",
					Email: "neha.verma@email.com", Skills: []string{"Carpentry"},
					Specializations: []string{"Furniture", "Cabinet Making"},
					Status:          api.StatusPending, Hold: true,
				},
				KYC: &api.KYC{ID: "kyc4", Status: api.StatusPending, PhotoFile: optional(samplePhoto)},
			},
		},
	}
}
