package ledger

import "errors"

// Error kinds surfaced by inventory and position operations. All are
// returned synchronously; nothing inside the ledger retries or clamps
// invalid input.
var (
	// ErrInvalidArgument reports a non-positive price or amount.
	ErrInvalidArgument = errors.New("ledger: invalid argument")
	// ErrInvalidState reports an operation that is illegal in the
	// current inventory state, such as flipping direction while a lot
	// is open or exiting an empty lot.
	ErrInvalidState = errors.New("ledger: invalid state")
	// ErrInsufficientInventory reports an exit amount exceeding the
	// held lot size beyond tolerance.
	ErrInsufficientInventory = errors.New("ledger: insufficient inventory")
	// ErrInsufficientFunds reports a cash requirement the position's
	// free fund cannot cover when strict cash checking is enabled.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)
