package core

import "errors"

// Errors
var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrOrderExists          = errors.New("order already exists")
	ErrOrderNotFound        = errors.New("order not found")
	ErrFillExceedsRemaining = errors.New("fill amount exceeds remaining quantity")
)
