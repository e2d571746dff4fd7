// Package engineers holds the listing and record view-models behind the
// engineer verification screens.
package engineers

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kingrea/engadmin/internal/api"
)

// Summary is one normalised row of the engineer listing.
type Summary struct {
	UserID          string
	ID              string
	Name            string
	Email           string
	Phone           string
	Status          api.Status
	Hold            bool
	Skills          []string
	Specializations []string
	SkillCategory   string
}

// DisplayName falls back to the email, then the id, for unnamed rows.
func (s Summary) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Email != "":
		return s.Email
	default:
		return s.UserID
	}
}

var titleCaser = cases.Title(language.English)

// StatusLabel is the display form of a status ("Pending", "On Hold", ...).
func StatusLabel(status api.Status) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}

// Normalize maps a loosely shaped listing entry onto Summary. Each field
// takes the first non-empty key in its priority order.
func Normalize(raw api.RawEngineer) Summary {
	s := Summary{
		UserID:          firstString(raw, "user_id", "id", "user.id"),
		ID:              firstString(raw, "id", "user_id"),
		Name:            firstString(raw, "name", "full_name", "profile.name", "user.name"),
		Email:           firstString(raw, "email", "user.email"),
		Phone:           firstString(raw, "phone", "mobile", "contact_number", "user.mobile"),
		Status:          api.ParseStatus(firstString(raw, "status", "profile_status")),
		Hold:            firstBool(raw, "is_hold", "hold", "on_hold"),
		Skills:          stringList(lookup(raw, "skills")),
		Specializations: stringList(lookup(raw, "specializations")),
		SkillCategory:   firstString(raw, "skill_category"),
	}
	return s
}

// NormalizeAll normalises every entry, dropping rows without any id.
func NormalizeAll(raw []api.RawEngineer) []Summary {
	out := make([]Summary, 0, len(raw))
	for _, entry := range raw {
		s := Normalize(entry)
		if s.UserID == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// lookup resolves dotted keys through nested objects.
func lookup(raw map[string]any, key string) any {
	var current any = raw
	for _, part := range strings.Split(key, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[part]
		if !ok {
			return nil
		}
	}
	return current
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := scalarString(lookup(raw, key)); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}

func firstBool(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		switch t := lookup(raw, key).(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		case float64:
			return t != 0
		}
	}
	return false
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}
