package replica

import "errors"

// ErrNotFound is returned when the local projection has no row for a
// user id yet — either the user-events topic hasn't caught up, or the
// identity service's client-side lookup should be tried instead.
var ErrNotFound = errors.New("replica: not found")
