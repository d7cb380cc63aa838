package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors:
//   - ErrNotFound: row does not exist
//   - ErrConflict: a unique constraint rejected the write
//   - ErrAlreadyUsed: the slot a write targets is already taken (e.g. a case
//     file that already sits in a package)
//   - ErrInvalidState: the row is not in a state the write expects
//   - ErrNoTx: the store method needs a row lock but no transaction is bound
//     to the context
//
// Validation of caller input does not belong here; use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrNoTx         = errors.New("no transaction in context")
)
