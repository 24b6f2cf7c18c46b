package models

import "fmt"

// UserNotFoundError is returned when a user lookup has no match
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found", e.Username)
}

// MissingScannerTypeError is returned when a file is submitted without a scanner name
type MissingScannerTypeError struct {
	File string
}

func (e *MissingScannerTypeError) Error() string {
	return fmt.Sprintf("scanner type must be specified for file import: %s", e.File)
}

// UploadError is returned when the service rejects a scan upload
type UploadError struct {
	File    string
	Message string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %s", e.File, e.Message)
}

// ServiceError is any other failed call to the findings service
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }
