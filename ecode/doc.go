// Package ecode defines the business error codes returned in API responses,
// the error taxonomy shared by every service, and small helpers for building
// consistent error messages.
//
// Services wrap one of the sentinel errors with %w:
//
//	var ErrBoardNotFound = fmt.Errorf("board %w", ecode.ErrNotFound)
//
// so the transport layer can map any error to a status with errors.Is.
package ecode
