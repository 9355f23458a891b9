package repository

import (
	"errors"

	"gorm.io/gorm"
)

// notFound translates gorm's record-not-found into the given domain sentinel
// so util.IsNotFound holds across the repository boundary. Other errors pass
// through untouched.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
