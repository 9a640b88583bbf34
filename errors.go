package fluxgo

import (
	"fmt"

	"github.com/fluxgo/fluxgo/imagestore"
)

// ErrNotFound is returned when an image is absent from a store. It
// matches os.ErrNotExist.
var ErrNotFound = imagestore.ErrNotFound

// RangeError indicates a revolution outside the image's captured
// count.
type RangeError struct {
	// Revolution is the revolution that was requested.
	Revolution int
	// Count is how many revolutions the image captured.
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("fluxgo: revolution %d out of range 0...%d", e.Revolution, e.Count-1)
}
