package scp

import "fmt"

// FormatError reports a malformed image container.
type FormatError struct {
	// Path names the image, when known.
	Path string
	// Field is the header field or structure that failed validation.
	Field string
	// Detail describes the offending value.
	Detail string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("scp: invalid %s: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("scp: %s: invalid %s: %s", e.Path, e.Field, e.Detail)
}

// TrackError reports a track record that cannot be used: absent from
// the image, out of range, or carrying a corrupt header. Callers
// decoding whole disks usually substitute an unformatted track and
// continue.
type TrackError struct {
	// Track is the track number requested.
	Track int
	// Detail describes the failure.
	Detail string
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("scp: track %d: %s", e.Track, e.Detail)
}
