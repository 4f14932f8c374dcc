package queries

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

var ErrReferenceAlreadySet = apperror.Conflict("transaction already has a different payment reference")

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func dbError(err error, msg string) error {
	return errors.Wrap(err, msg)
}
