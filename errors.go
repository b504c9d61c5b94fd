package rove

import "github.com/pkg/errors"

// ErrInvalidAgency is returned by ResolvePaths for an agency outside the
// set ROVE ships a Normalizer for.
var ErrInvalidAgency = errors.New("rove: unsupported agency")

// ErrInvalidMode is returned by ResolvePaths and Pipeline.Run for a mode
// with no route_type mapping.
var ErrInvalidMode = errors.New("rove: unsupported mode")
