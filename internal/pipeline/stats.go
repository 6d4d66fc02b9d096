package pipeline

// Progress is a point-in-time view of a running batch, delivered to the
// progress callback after every job.
type Progress struct {
	State     State
	Done      int // Jobs finished, successful or not.
	Total     int
	Succeeded int
	Failed    int

	// Last finished job.
	Index   int
	Name    string
	LastOK  bool
	LastErr string
}

// Percent returns completion in [0,100].
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}
