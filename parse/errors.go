package parse

import "errors"

// Fatal, typed failures raised while loading a GTFS archive. Each names
// the offending table/column so Pipeline.Run can produce a diagnostic
// without the caller needing to parse a free-form string.
var (
	ErrMissingRequiredTable  = errors.New("parse: missing required table")
	ErrMissingRequiredColumn = errors.New("parse: missing required column")
	ErrEmptyRequiredTable    = errors.New("parse: required table is empty")
	ErrMissingServiceDates   = errors.New("parse: no service_id active on any configured service date")
)
