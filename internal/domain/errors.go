package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogNotFound is returned when a catalog snapshot id is unknown or expired
	ErrCatalogNotFound = errors.New("catalog snapshot not found")

	// ErrEmptyCatalog is returned by ingestion when a catalog file yields no usable rows
	ErrEmptyCatalog = errors.New("catalog has no usable rows")

	// ErrInvalidFile is returned when an input file is missing, empty or lacks required columns
	ErrInvalidFile = errors.New("invalid input file")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStorage is returned when the match store cannot be read or written
	ErrStorage = errors.New("match storage failure")
)
