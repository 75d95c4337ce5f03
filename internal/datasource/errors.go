package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrType classifies cluster API failures so the console can print a short,
// specific message
type ErrType int

const (
	ErrUnknown ErrType = iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrRateLimited
	ErrServerError
	ErrTLS
	ErrUnreachable
	ErrCanceled
)

func (t ErrType) String() string {
	switch t {
	case ErrUnauthorized:
		return "unauthorized"
	case ErrForbidden:
		return "forbidden"
	case ErrNotFound:
		return "not found"
	case ErrRateLimited:
		return "rate limited"
	case ErrServerError:
		return "server error"
	case ErrTLS:
		return "tls"
	case ErrUnreachable:
		return "unreachable"
	case ErrCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// APIError is a classified cluster API error
type APIError struct {
	Type    ErrType
	Op      string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an APIError of type t
func IsType(err error, t ErrType) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == t
}

// ClassifyError wraps a raw client-go error into an APIError. op names the
// failed call, e.g. "list pods".
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Type: ErrCanceled, Op: op, Message: "request canceled", Err: err}
	}

	var statusErr *k8serrors.StatusError
	if errors.As(err, &statusErr) {
		status := statusErr.Status()
		switch code := status.Code; {
		case code == http.StatusUnauthorized:
			return &APIError{
				Type:    ErrUnauthorized,
				Op:      op,
				Message: "credentials rejected, refresh your kubeconfig login",
				Err:     err,
			}
		case code == http.StatusForbidden:
			return &APIError{Type: ErrForbidden, Op: op, Message: status.Message, Err: err}
		case code == http.StatusNotFound:
			return &APIError{Type: ErrNotFound, Op: op, Message: status.Message, Err: err}
		case code == http.StatusTooManyRequests:
			return &APIError{Type: ErrRateLimited, Op: op, Message: "too many requests", Err: err}
		case code >= 500:
			return &APIError{
				Type:    ErrServerError,
				Op:      op,
				Message: fmt.Sprintf("server error (%d): %s", code, status.Message),
				Err:     err,
			}
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "x509") || strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls:") {
		return &APIError{Type: ErrTLS, Op: op, Message: "TLS verification failed: " + errStr, Err: err}
	}
	if strings.Contains(errStr, "dial tcp") || strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return &APIError{Type: ErrUnreachable, Op: op, Message: "cluster unreachable: " + errStr, Err: err}
	}

	return &APIError{Type: ErrUnknown, Op: op, Message: errStr, Err: err}
}
