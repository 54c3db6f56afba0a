package domain

import "errors"

var (
	ErrNoPages               = errors.New("drawing has no pages")
	ErrRunNotFound           = errors.New("extraction run not found")
	ErrDivisionNotFound      = errors.New("construction division not found")
	ErrDuplicateDivisionCode = errors.New("division code already exists")
	ErrPageImageNotFound     = errors.New("page image not found in storage")
	ErrUnsupportedExport     = errors.New("unsupported export format")
	ErrRunNotFinished        = errors.New("extraction run has not finished")
)
