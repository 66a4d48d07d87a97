// Package mirror pushes the ledger to a remote version-controlled store with
// compare-and-swap semantics and pulls it back for recovery.
package mirror

import (
	"context"
)

// Snapshot is the remote copy of a file and the token guarding it.
type Snapshot struct {
	// SHA is the remote entity tag; empty when Exists is false.
	SHA     string
	Content []byte
	Exists  bool
}

// Remote is a versioned file store supporting compare-and-swap writes.
type Remote interface {
	// Name identifies the remote in logs and errors.
	Name() string

	// Fetch returns the current snapshot of path. An absent file is a
	// snapshot with Exists false, not an error.
	Fetch(ctx context.Context, path string) (Snapshot, error)

	// Put writes content to path. An empty sha creates the file; otherwise
	// sha must match the remote's current token. A stale or missing token
	// yields an errors.ConflictError. Put returns the new token.
	Put(ctx context.Context, path string, content []byte, sha string) (string, error)
}

// Action is what a push did to the remote.
type Action string

const (
	Created   Action = "created"
	Updated   Action = "updated"
	Unchanged Action = "unchanged"
)

// Outcome reports a completed push.
type Outcome struct {
	Action   Action `json:"action" yaml:"action"`
	SHA      string `json:"sha" yaml:"sha"`
	Attempts int    `json:"attempts" yaml:"attempts"`
}
