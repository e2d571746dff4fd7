package engineers

import (
	"strings"

	"github.com/kingrea/engadmin/internal/api"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter is the listing search state.
type Filter struct {
	Query  string
	Status string
}

// Active reports whether the filter narrows the listing at all.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Query) != "" || (f.Status != "" && f.Status != StatusAll)
}

// MatchQuery is a case-insensitive substring match on name or email. A
// blank query matches everything.
func MatchQuery(s Summary, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Email), q)
}

// MatchStatus is an exact status match; "all" and "" match everything.
func MatchStatus(s Summary, status string) bool {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == StatusAll {
		return true
	}
	return string(s.Status) == status
}

// Apply returns the summaries matching both predicates, in input order.
func Apply(summaries []Summary, f Filter) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if MatchQuery(s, f.Query) && MatchStatus(s, f.Status) {
			out = append(out, s)
		}
	}
	return out
}

// Stats are the dashboard counters.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
	Verified int
	OnHold   int
}

// Count tallies summaries by status and hold.
func Count(summaries []Summary) Stats {
	var st Stats
	st.Total = len(summaries)
	for _, s := range summaries {
		switch s.Status {
		case api.StatusApproved:
			st.Approved++
		case api.StatusRejected:
			st.Rejected++
		case api.StatusVerified:
			st.Verified++
		default:
			st.Pending++
		}
		if s.Hold {
			st.OnHold++
		}
	}
	return st
}
