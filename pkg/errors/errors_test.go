package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/designlib/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestInvalidNameError(t *testing.T) {
	err := pkgerrors.NewInvalidNameError("a/b.pdf", "contains a path separator")
	assert.Equal(t, `invalid file name "a/b.pdf": contains a path separator`, err.Error())
	assert.True(t, pkgerrors.IsInvalidName(err))
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "file", ID: "plan1.pdf"}
		assert.Equal(t, `file "plan1.pdf" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("file", "x")
		wrapped := fmt.Errorf("get: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})

	t.Run("through resource error", func(t *testing.T) {
		err := pkgerrors.WrapResource("get", "file", "x", pkgerrors.NewNotFoundError("file", "x"))
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Field: "category", Message: "unknown category"}
		assert.Equal(t, "validation failed for field category: unknown category", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapValidation("x", nil))
	})
}

func TestCorruptLedgerError(t *testing.T) {
	base := errors.New("bare quote in non-quoted field")
	err := pkgerrors.NewCorruptLedgerError("ledger.csv", 4, base)

	assert.Contains(t, err.Error(), "line 4")
	assert.True(t, pkgerrors.IsCorruptLedger(err))
	assert.ErrorIs(t, err, base)

	noLine := pkgerrors.NewCorruptLedgerError("ledger.csv", 0, base)
	assert.NotContains(t, noLine.Error(), "line")
}

func TestRemoteErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"authentication", pkgerrors.NewAuthenticationError("github", "token", "missing token", nil), pkgerrors.ErrRemoteAuth},
		{"conflict", pkgerrors.NewConflictError("ledger.csv", "abc", http.StatusConflict), pkgerrors.ErrRemoteConflict},
		{"unavailable", pkgerrors.NewUnavailableError("github", "fetch", errors.New("dial tcp")), pkgerrors.ErrRemoteUnavailable},
		{"api 401", pkgerrors.NewAPIError("github", http.StatusUnauthorized, "bad credentials"), pkgerrors.ErrRemoteAuth},
		{"api 422", pkgerrors.NewAPIError("github", http.StatusUnprocessableEntity, "sha mismatch"), pkgerrors.ErrRemoteConflict},
		{"api 503", pkgerrors.NewAPIError("github", http.StatusServiceUnavailable, "down"), pkgerrors.ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, pkgerrors.IsRemote(tt.err))

			wrapped := pkgerrors.NewRemoteSyncError("ledger.csv", 2, tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.True(t, pkgerrors.IsRemote(wrapped))
		})
	}

	t.Run("api 400 is not remote tier", func(t *testing.T) {
		err := pkgerrors.NewAPIError("github", http.StatusBadRequest, "bad request")
		assert.False(t, pkgerrors.IsRemote(err))
	})
}

func TestConflictErrorMessage(t *testing.T) {
	create := pkgerrors.NewConflictError("ledger.csv", "", http.StatusUnprocessableEntity)
	assert.Contains(t, create.Error(), "already exists")

	update := pkgerrors.NewConflictError("ledger.csv", "abc", http.StatusConflict)
	assert.Contains(t, update.Error(), "sha abc is stale")
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.WrapIO("write", "/tmp/x", base)
	require.Error(t, err)

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Operation)
	assert.Equal(t, "IO error during write of /tmp/x: permission denied", err.Error())
	assert.NoError(t, pkgerrors.WrapIO("write", "/tmp/x", nil))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("store", "s3_bucket is required", nil)
	assert.Equal(t, "configuration error in store: s3_bucket is required", err.Error())
	assert.Nil(t, err.Unwrap())
}
