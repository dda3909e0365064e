// Package repositories holds one repository per MongoDB collection. Every
// repository takes the database handle in its constructor and a context on
// every call; no package-level connection state exists.
package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("record not found")

// notFound maps the driver's sentinel onto ours.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// IsDuplicateKey reports whether err is a unique-index violation, so callers
// can treat races against unique indexes the same as a prior read hit.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
