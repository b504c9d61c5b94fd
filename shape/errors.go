package shape

import "errors"

// ErrShapeMatchFailed marks a single segment's trace_attributes
// request as unusable (timeout, malformed response, no route found).
// It is never fatal to Generate: that segment's great-circle distance
// is kept instead and the failure is logged.
var ErrShapeMatchFailed = errors.New("shape: no usable route match")
