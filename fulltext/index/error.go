package index

import "golang.org/x/xerrors"

var (
	// ErrNotFound is returned when looking up a document that does not
	// exist.
	ErrNotFound = xerrors.New("not found")

	// ErrMissingKey is returned when attempting to update a document
	// without a key.
	ErrMissingKey = xerrors.New("update does not specify a document key")
)
