package gtfs

import (
	"errors"
	"fmt"

	"github.com/transitfeed/pkg/gtfs/models"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError is returned by the Get methods. ID is the identifier exactly
// as it was passed in.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateKeyError reports two rows sharing an identifier that must be
// unique. Line is the source line of the second row, 0 when unknown.
type DuplicateKeyError struct {
	Table models.Table
	Line  int
	ID    string
}

func (e *DuplicateKeyError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: duplicate key %q", e.Table, e.ID)
	}
	return fmt.Sprintf("%s:%d: duplicate key %q", e.Table, e.Line, e.ID)
}
