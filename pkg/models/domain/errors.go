package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request never got a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServiceError is a non-2xx response. Detail is the service's message, verbatim.
type ServiceError struct {
	Op     string
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	return e.Detail
}

// ValidationError is a rejected payload, either locally or by the service.
type ValidationError struct {
	Field   string
	Status  int // 0 when raised locally
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Local reports whether the check failed before contacting the service.
func (e *ValidationError) Local() bool {
	return e.Status == 0
}

type NotFoundError struct {
	Resource string
	ID       int64
	Detail   string
}

func (e *NotFoundError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// DisplayMessage returns what the operator should see for err. Messages that come from the
// service or from local validation are shown as is, anything else gets the fallback.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var (
		svcErr      *ServiceError
		validErr    *ValidationError
		notFoundErr *NotFoundError
	)
	switch {
	case errors.As(err, &validErr):
		return validErr.Message
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &svcErr):
		if svcErr.Detail == "" {
			return fallback
		}
		return svcErr.Detail
	default:
		return fallback
	}
}

// StatusDetail is the detail used when a response carries none.
func StatusDetail(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}
