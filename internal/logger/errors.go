package logger

import "errors"

var (
	// ErrServiceNameIsEmpty is returned when the configured service name is empty.
	ErrServiceNameIsEmpty = errors.New("log servicename can not be empty")

	// ErrAppNameIsEmpty is returned when the configured app name is empty.
	ErrAppNameIsEmpty = errors.New("log appname can not be empty")
)
