package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// ListQuery holds the optional filter applied to collection listings.
// Search is a case-insensitive substring match on the entity's display field
// (name or title); an empty Search returns the whole collection.
type ListQuery struct {
	Search string
}

// FileListQuery extends ListQuery with an optional folder scope.
type FileListQuery struct {
	Search   string
	FolderID *string
}

// ListResult is a generic listing result wrapper.
// T is typically a model type.
type ListResult[T any] struct {
	Items []T
	Total int
}
