package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrDuplicate is returned by Create when a unique key is already taken.
var ErrDuplicate = errors.New("repository: duplicate key")

func wrapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
