package ledger

import (
	"time"

	"github.com/agentstation/designlib/pkg/category"
)

// FileRecord is one row of the ledger.
type FileRecord struct {
	Name       string            `json:"name" yaml:"name"`
	Category   category.Category `json:"category" yaml:"category"`
	UploadedAt time.Time         `json:"uploaded_at" yaml:"uploaded_at"`
}

// Same reports whether r and other identify the same (name, category) pair.
func (r FileRecord) Same(other FileRecord) bool {
	return r.Name == other.Name && r.Category == other.Category
}

// Order selects the ordering returned by Filter.
type Order int

const (
	// Insertion keeps upload order.
	Insertion Order = iota
	// NewestFirst sorts by upload time, latest first; ties keep upload order.
	NewestFirst
)

// Repair describes a field that was substituted while decoding.
type Repair struct {
	Line  int    `json:"line"`
	Name  string `json:"name"`
	Field string `json:"field"`
	Raw   string `json:"raw"`
	Value string `json:"value"`
}
