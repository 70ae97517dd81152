package repository

import "errors"

var (
	ErrAlarmNotFound       = errors.New("alarm not found")
	ErrAlreadyAcknowledged = errors.New("alarm already acknowledged")
)
