package internal

import "fmt"

// ConfigError represents missing or invalid static configuration
type ConfigError struct {
	Field string // "client_id", "timezone", ...
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AuthError represents a rejected authorization or token exchange
type AuthError struct {
	Op         string // "authorize", "refresh"
	StatusCode int
	Payload    string // remote error body, verbatim
	Err        error
}

func (e *AuthError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("auth error [%s] status %d: %s", e.Op, e.StatusCode, e.Payload)
	}
	return fmt.Sprintf("auth error [%s]: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError represents a failed activity list or detail request
type FetchError struct {
	Op         string // "list", "detail"
	Page       int
	StatusCode int
	Payload    string
	Err        error
}

func (e *FetchError) Error() string {
	where := e.Op
	if e.Page > 0 {
		where = fmt.Sprintf("%s page %d", e.Op, e.Page)
	}
	if e.Payload != "" {
		return fmt.Sprintf("fetch error [%s] status %d: %s", where, e.StatusCode, e.Payload)
	}
	return fmt.Sprintf("fetch error [%s]: %v", where, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WriteError represents errors persisting an export document
type WriteError struct {
	Format string
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
