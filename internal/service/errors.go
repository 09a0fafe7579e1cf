package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Vivek-yadav01/CollabRoom/internal/repository"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrFileType       = errors.New("only images, PDFs, and document files are allowed")
	ErrFileTooLarge   = errors.New("file exceeds the upload size limit")
	ErrInternalServer = errors.New("internal server error")
)

// mapRepoError translates registry errors into service-level errors, logging
// at a severity matching the class: a missing room is an expected business
// outcome, anything else is not.
func mapRepoError(err error, logCtx *logrus.Entry, op string) error {
	if errors.Is(err, repository.ErrRoomNotFound) {
		logCtx.Warnf("%s: room not found", op)
		return ErrRoomNotFound
	}
	logCtx.WithError(err).Errorf("%s: registry error", op)
	return ErrInternalServer
}
