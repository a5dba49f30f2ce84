package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrEmptyContent = fmt.Errorf("%w: message content is empty", ErrValidation)
	ErrNoIdentity   = errors.New("session identity is incomplete")
)
