package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a run, or the whole simulation, has gone.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// SetFinished sets the number of finished elements.
func (b *ProgressBar) SetFinished(finished uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished = finished
}
