package ledger

import "errors"

// ErrNoPayee is returned when an FSX has neither a resolved bid nor a
// confirmation executioner to pay — a bug in the caller, since the
// engine should never invoke payout before one of the two is set.
var ErrNoPayee = errors.New("ledger: no payee resolvable for side effect")
