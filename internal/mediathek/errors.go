package mediathek

import "errors"

var (
	// ErrInvalidURL is returned when the given page URL is not a valid
	// HTTP or HTTPS URL.
	ErrInvalidURL = errors.New("invalid mediathek URL")

	// ErrNotFound is returned when the page carries no document ID, the
	// descriptor yields no usable streams, the requested quality tier is
	// not available, or the video has no subtitles.
	ErrNotFound = errors.New("not found")

	// ErrNotJSON is returned when the media endpoint responds with
	// something other than JSON.
	ErrNotJSON = errors.New("media endpoint did not return JSON")
)
