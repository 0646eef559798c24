package entity

import "errors"

var (
	ErrBrowserUnavailable = errors.New("browser unavailable")
	ErrNavigation         = errors.New("navigation failed")
	ErrNoAnalysis         = errors.New("no analysis response")
	ErrElementNotFound    = errors.New("element not found")
)
