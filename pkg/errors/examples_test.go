package errors_test

import (
	"fmt"

	"github.com/agentstation/designlib/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewNotFoundError("file", "plan1.pdf")

	if errors.IsNotFound(err) {
		fmt.Println("File not found")
	}

	// Output: File not found
}

// Example_remoteSyncError shows how a failed push is classified.
func Example_remoteSyncError() {
	err := errors.NewRemoteSyncError("file_metadata.csv", 2,
		errors.NewConflictError("file_metadata.csv", "abc123", 409))

	switch {
	case errors.IsConflict(err):
		fmt.Println("Remote changed underneath us")
	case errors.IsRemote(err):
		fmt.Println("Remote unreachable")
	}

	// Output: Remote changed underneath us
}

// Example_corruptLedger shows that an unreadable ledger is distinct from an empty one.
func Example_corruptLedger() {
	err := errors.NewCorruptLedgerError("file_metadata.csv", 3, errors.New("wrong number of fields"))

	fmt.Println(errors.IsCorruptLedger(err))
	fmt.Println(errors.IsNotFound(err))

	// Output:
	// true
	// false
}
