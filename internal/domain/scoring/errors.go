package scoring

import "errors"

// ErrMissingParameter marks a tiebreak check or transition invoked without its
// point target.
var ErrMissingParameter = errors.New("missing parameter")
