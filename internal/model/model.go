package model

// Package model contains the vault's domain models/data structures.
// These are pure domain types with no database-specific dependencies or tags;
// they can be used across layers (HTTP, service, storage) without coupling to
// persistence.
