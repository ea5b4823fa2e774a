package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	// ErrNotFound is returned when no record matches. Malformed ids also map here.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidID is returned by ParseID for anything that is not a 24 character hex id.
	ErrInvalidID = errors.New("invalid id")
)

// ParseID converts a hex string to an ObjectID.
func ParseID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return objectID, nil
}

// ParseIDs converts hex strings to ObjectIDs, skipping malformed entries.
func ParseIDs(ids []string) []bson.ObjectID {
	objectIDs := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objectID, err := bson.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, objectID)
		}
	}
	return objectIDs
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	default:
		return err
	}
}
