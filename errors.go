package blogfs

import "errors"

// Error classes surfaced by the store. Callers test them with errors.Is.
var (
	// ErrNotFound reports a missing blog folder, file or metadata field.
	ErrNotFound = errors.New("not found")
	// ErrMalformedMetadata reports a metadata document that cannot be
	// decoded or lacks a required field.
	ErrMalformedMetadata = errors.New("malformed metadata")
	// ErrRender reports a markdown renderer failure.
	ErrRender = errors.New("render failed")
)
