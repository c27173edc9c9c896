package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for scanner failure modes. Callers should use errors.Is.
var (
	// ErrPermissionDenied means the external service refused the credential.
	ErrPermissionDenied = errors.New("engine: permission denied")

	// ErrTransient covers every other scanner fault, including timeouts
	// and malformed responses.
	ErrTransient = errors.New("engine: transient failure")

	// ErrNoScans is returned when a run requests nothing.
	ErrNoScans = errors.New("engine: no scans requested")
)

// ScanErrorKind distinguishes the two scanner failure modes.
type ScanErrorKind int

const (
	TransientFailure ScanErrorKind = iota
	PermissionDeniedFailure
)

func (k ScanErrorKind) String() string {
	if k == PermissionDeniedFailure {
		return "permission denied"
	}
	return "transient failure"
}

// ScanError is returned by Scanner.Execute.
type ScanError struct {
	Scan string
	Kind ScanErrorKind
	Err  error

	// Finding replaces the generic permission finding when the scanner
	// knows which credential was refused.
	Finding *Finding
}

func (e *ScanError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scan %s: %s", e.Scan, e.Kind)
	}
	return fmt.Sprintf("scan %s: %s: %v", e.Scan, e.Kind, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ScanError) Is(target error) bool {
	switch target {
	case ErrPermissionDenied:
		return e.Kind == PermissionDeniedFailure
	case ErrTransient:
		return e.Kind == TransientFailure
	}
	return false
}

// PermissionDenied wraps err as a permission failure of scan.
func PermissionDenied(scan string, err error) error {
	return &ScanError{Scan: scan, Kind: PermissionDeniedFailure, Err: err}
}

// PermissionDeniedFinding is PermissionDenied with the finding to report
// in place of the generic one.
func PermissionDeniedFinding(scan string, err error, f Finding) error {
	return &ScanError{Scan: scan, Kind: PermissionDeniedFailure, Err: err, Finding: &f}
}

// Transient wraps err as a transient failure of scan.
func Transient(scan string, err error) error {
	return &ScanError{Scan: scan, Kind: TransientFailure, Err: err}
}

// ValidationError reports requested scan names that are not registered.
type ValidationError struct {
	Invalid []string
	Valid   []string
	Err     error
}

func (e *ValidationError) Error() string {
	if len(e.Invalid) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "invalid scan selection"
	}
	return fmt.Sprintf("unknown scan(s): %s (available: %s)",
		strings.Join(e.Invalid, ", "), strings.Join(e.Valid, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
