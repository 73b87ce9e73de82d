package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrEmptyDocument       = errors.New("document contains no extractable text")
	ErrInvalidPayload      = errors.New("invalid request payload")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrStorageUnavailable  = errors.New("object storage unavailable")
)
