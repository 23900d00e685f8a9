package service

import "errors"

// Package service contains the use-case layer: validation, the compensation
// flows around blob storage, and publication of live change events. Handlers
// above it stay thin; repositories below it stay persistence-only.

// Sentinel errors shared across the entity services. Handlers map these to
// HTTP status codes and machine-readable error codes.
var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("not found")
)
