package service

import (
	apperrors "github.com/aeroway/aeroway-api/internal/errors"
)

// storeErr passes domain errors through and classifies anything else as a
// database failure.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Database(err)
}
