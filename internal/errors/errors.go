// SPDX-License-Identifier: Apache-2.0

// Package errors provides error handling for sof-mcp.
//
// It re-exports github.com/cockroachdb/errors so that every package gets
// stack traces, wrapping and user-facing hints from a single import:
//
//	if err := catalog.Validate(); err != nil {
//	    return errors.Wrap(err, "load pattern catalog")
//	}
//
//	return errors.WithHint(err, "check the rule's regular expression")
//
// Only two failure classes ever reach a caller of the extraction engine:
// input errors (missing or blank document text) and catalog errors (a
// malformed pattern catalog). Everything else degrades into flagged or
// lower-confidence events.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap them with the helpers below to add context while
// keeping errors.Is working.
var (
	// ErrInput indicates the document text was missing, blank or unreadable.
	ErrInput = New("invalid input")

	// ErrCatalog indicates the pattern catalog could not be loaded or validated.
	ErrCatalog = New("invalid pattern catalog")

	// ErrUnsupportedFormat indicates no source decoder accepted a document.
	ErrUnsupportedFormat = New("unsupported document format")

	// ErrInvalidConfig indicates an extraction or application setting is out of range.
	ErrInvalidConfig = New("invalid configuration")
)

// NewInputError creates an input error with a formatted message.
func NewInputError(format string, args ...interface{}) error {
	return Wrap(ErrInput, Newf(format, args...).Error())
}

// NewCatalogError creates a catalog error with a formatted message.
func NewCatalogError(format string, args ...interface{}) error {
	return Wrap(ErrCatalog, Newf(format, args...).Error())
}

// WrapCatalog marks err as a catalog error, keeping its message as context.
func WrapCatalog(err error, context string) error {
	if err == nil {
		return nil
	}
	return Wrap(Wrap(ErrCatalog, err.Error()), context)
}

// NewConfigError creates an invalid-configuration error with a formatted message.
func NewConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}

// IsInputError checks if an error is or wraps ErrInput.
func IsInputError(err error) bool {
	return err != nil && Is(err, ErrInput)
}

// IsCatalogError checks if an error is or wraps ErrCatalog.
func IsCatalogError(err error) bool {
	return err != nil && Is(err, ErrCatalog)
}

// IsUnsupportedFormatError checks if an error is or wraps ErrUnsupportedFormat.
func IsUnsupportedFormatError(err error) bool {
	return err != nil && Is(err, ErrUnsupportedFormat)
}

// IsConfigError checks if an error is or wraps ErrInvalidConfig.
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}
