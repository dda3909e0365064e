package controllers

import (
	"errors"

	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
)

// notFoundOr maps the repository miss onto a 404 with notFoundMsg; anything
// else becomes an internal error with internalMsg.
func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(internalMsg, err)
}
