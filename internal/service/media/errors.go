package media

import (
	"errors"
	"fmt"
)

var (
	// ErrOffline indicates that a download was requested while the network is unreachable.
	ErrOffline = errors.New("device is offline")
	// ErrEmptyCatalog indicates that no catalog snapshot is persisted.
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrUnknownItem indicates that the requested item is not in the catalog.
	ErrUnknownItem = errors.New("unknown item")
	// ErrTransferCancelled indicates that a transfer was cancelled before it finished.
	ErrTransferCancelled = errors.New("transfer cancelled")
	// ErrTransferStalled indicates that no bytes arrived for longer than the stall timeout.
	ErrTransferStalled = errors.New("transfer stalled")
	// ErrIncompleteDownload indicates that the downloaded size doesn't match the announced size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrMissingLocalFile indicates that a finished transfer left no file at the expected path.
	ErrMissingLocalFile = errors.New("local file is missing after transfer")
	// ErrNothingToCancel indicates that no transfer is in flight for the item.
	ErrNothingToCancel = errors.New("no transfer in flight")
	// ErrCoordinatorClosed indicates that the coordinator is shutting down.
	ErrCoordinatorClosed = errors.New("coordinator is shut down")
)

// TransferPhase names the step a transfer failed in.
type TransferPhase string

// Transfer phases.
const (
	TransferPhaseQueued     TransferPhase = "waiting for a free slot"
	TransferPhaseFetching   TransferPhase = "requesting remote file"
	TransferPhasePreparing  TransferPhase = "creating temporary file"
	TransferPhaseWriting    TransferPhase = "writing file"
	TransferPhaseVerifying  TransferPhase = "verifying file size"
	TransferPhaseFinalizing TransferPhase = "finalizing file"
)

// TransferError is a network or filesystem failure during a transfer.
type TransferError struct {
	ItemID string
	Phase  TransferPhase
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of item '%s' failed while %s: %v", e.ItemID, e.Phase, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// PersistenceError is a failure reading or writing durable state.
// It never undoes in-memory state.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s '%s': %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
