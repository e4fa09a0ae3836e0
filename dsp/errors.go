package dsp

import "errors"

// ErrInvalidParams is returned by a primitive's constructor when its
// parameters can't be turned into a working filter (e.g. a zero-length
// history buffer). It is a construction-time failure, not a per-sample one.
var ErrInvalidParams = errors.New("dsp: invalid parameters")
