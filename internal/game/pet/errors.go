package pet

import "errors"

// ErrNotFound is returned by repositories when a pet lookup yields no results.
var ErrNotFound = errors.New("pet not found")
