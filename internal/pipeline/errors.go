package pipeline

import "fmt"

// MissingInputError is recorded when a resolved input file does not exist
// at render time. The job is skipped; the batch continues. Index is -1 for
// batch-wide inputs such as the caption file, which abort the batch instead.
type MissingInputError struct {
	Index int
	Role  string // "primary", "secondary", "narration", "music", "captions" or "font".
	Path  string
	Err   error
}

func (e *MissingInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s input not found: %s", e.Role, e.Path)
	}
	return fmt.Sprintf("job %d: %s input not found: %s", e.Index+1, e.Role, e.Path)
}

func (e *MissingInputError) Unwrap() error { return e.Err }
