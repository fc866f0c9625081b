package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrProviderFailure = errors.New("provider failure")
	ErrStorage         = errors.New("storage failure")
)

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// ProviderErrorKind classifies why a generation provider call failed.
type ProviderErrorKind string

const (
	ProviderErrorConfig    ProviderErrorKind = "config"
	ProviderErrorTransport ProviderErrorKind = "transport"
	ProviderErrorStatus    ProviderErrorKind = "status"
	ProviderErrorDecode    ProviderErrorKind = "decode"
	ProviderErrorEmpty     ProviderErrorKind = "empty"
	ProviderErrorDownload  ProviderErrorKind = "download"
)

// ProviderError is returned by every provider client. Status and Body are set
// for ProviderErrorStatus only.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Status   int
	Body     string
	Err      error
}

func (e *ProviderError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	sb.WriteString(": ")
	sb.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&sb, " %d", e.Status)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		sb.WriteString(" - ")
		sb.WriteString(body)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ProviderError) Is(target error) bool { return target == ErrProviderFailure }

func (e *ProviderError) Unwrap() error { return e.Err }

// Degrade renders the failure as the human readable text embedded in content
// when a text or audio generation fails.
func (e *ProviderError) Degrade(action string) string {
	return fmt.Sprintf("Error during %s: %s", action, e.Error())
}

// DegradedText converts any provider failure into embedded content text.
func DegradedText(action string, err error) string {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Degrade(action)
	}
	return fmt.Sprintf("Error during %s: %v", action, err)
}
