// Package category defines the closed set of design file categories and the
// codecs that turn a (name, category) pair into a file store key.
package category

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/designlib/pkg/errors"
)

// Category labels a design file.
type Category string

// Known categories. All is only valid as a list filter.
const (
	Plans2D Category = "2D Plans"
	Plans3D Category = "3D Plans"
	Other   Category = "Other"
	All     Category = "All"
)

var known = []Category{Plans2D, Plans3D, Other}

// Known returns the assignable categories in display order.
func Known() []Category {
	out := make([]Category, len(known))
	copy(out, known)
	return out
}

// String returns the category label.
func (c Category) String() string { return string(c) }

// Valid reports whether c can be assigned to a file.
func (c Category) Valid() bool {
	for _, k := range known {
		if c == k {
			return true
		}
	}
	return false
}

// fold returns the caseless form of s. Casers carry state, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Parse resolves a user supplied label, ignoring case and surrounding space.
func Parse(s string) (Category, error) {
	if c, ok := lookup(s); ok {
		return c, nil
	}
	return "", errors.NewValidationError("category", s, "must be one of 2D Plans, 3D Plans, Other")
}

// ParseFilter is Parse plus All; an empty string also means All.
func ParseFilter(s string) (Category, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || fold(trimmed) == fold(string(All)) {
		return All, nil
	}
	if c, ok := lookup(trimmed); ok {
		return c, nil
	}
	return "", errors.NewValidationError("category", s, "must be one of All, 2D Plans, 3D Plans, Other")
}

// Matches reports whether c passes filter.
func (c Category) Matches(filter Category) bool {
	return filter == All || filter == "" || c == filter
}

func lookup(s string) (Category, bool) {
	want := fold(strings.TrimSpace(s))
	for _, k := range known {
		if fold(string(k)) == want {
			return k, true
		}
	}
	return "", false
}
