package convert

import "errors"

var (
	// ErrUnsupportedNode is returned for node kinds with no UniAST mapping.
	ErrUnsupportedNode = errors.New("unsupported node")
	// ErrInvalidHeadingLevel is returned for headings outside levels 1 to 6.
	ErrInvalidHeadingLevel = errors.New("invalid heading level")
	// ErrInvalidLinkContent is returned when a link holds anything but text.
	ErrInvalidLinkContent = errors.New("invalid link content")
	// ErrMissingReference is returned when an internal target has neither a
	// raw nor a parsed reference.
	ErrMissingReference = errors.New("internal target has no reference")
)
