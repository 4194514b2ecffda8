package repository

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already in use")
)
