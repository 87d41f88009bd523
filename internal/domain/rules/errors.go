package rules

import "errors"

// ErrUnrecognizedMatchType is returned for any identifier outside the catalog.
var ErrUnrecognizedMatchType = errors.New("unrecognized match type")
