package service

import "errors"

var (
	ErrInvalidOrder       = errors.New("invalid order request")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
