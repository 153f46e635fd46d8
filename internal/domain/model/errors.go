package model

import "errors"

// ErrInvalidRequest marks input rejected at the boundary before any provider is called.
var ErrInvalidRequest = errors.New("invalid request")
