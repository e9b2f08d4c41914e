package record

import (
	"strings"

	"golang.org/x/xerrors"
)

// ErrMalformedKey is returned when a canonical record key cannot be parsed
// into a dataset and local ID.
var ErrMalformedKey = xerrors.New("malformed record key")

// ID correlates a record across the annotation store, the metadata index and
// the full-text index.
type ID struct {
	// The dataset the record belongs to.
	DatasetID string

	// The ID of the record within its dataset.
	LocalID string
}

// New returns an ID for the specified dataset and local ID.
func New(datasetID, localID string) ID {
	return ID{DatasetID: datasetID, LocalID: localID}
}

// Key returns the canonical key for the record. The key doubles as the
// primary key of the full-text index document.
func (id ID) Key() string {
	return "/" + id.DatasetID + "/" + id.LocalID
}

// String implements fmt.Stringer.
func (id ID) String() string { return id.Key() }

// Parse converts a canonical key of the form "/dataset/local" back into an ID.
func Parse(key string) (ID, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "" || parts[1] == "" || parts[2] == "" {
		return ID{}, xerrors.Errorf("parse %q: %w", key, ErrMalformedKey)
	}

	return ID{DatasetID: parts[1], LocalID: parts[2]}, nil
}
