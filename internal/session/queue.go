package session

import (
	"time"

	"github.com/google/uuid"
)

// QueueStatus tracks a queued hymn through its lifecycle.
type QueueStatus int

const (
	StatusWaiting QueueStatus = iota
	StatusPresenting
	StatusCompleted
	StatusSkipped
)

// String returns the status name.
func (s QueueStatus) String() string {
	switch s {
	case StatusWaiting:
		return "Waiting"
	case StatusPresenting:
		return "Presenting"
	case StatusCompleted:
		return "Completed"
	case StatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// QueueItem is one entry in the presentation queue.
// The queue lives in memory only; it is not persisted across restarts.
type QueueItem struct {
	ID         uuid.UUID
	HymnID     string
	Title      string
	StartVerse int
	Status     QueueStatus
	AddedAt    time.Time
}

// queue is the ordered list of queued hymns. Callers hold the
// coordinator lock; the queue itself is not safe for concurrent use.
type queue struct {
	items []QueueItem
}

func (q *queue) add(hymnID, title string, startVerse int) QueueItem {
	item := QueueItem{
		ID:         uuid.New(),
		HymnID:     hymnID,
		Title:      title,
		StartVerse: startVerse,
		Status:     StatusWaiting,
		AddedAt:    time.Now(),
	}
	q.items = append(q.items, item)
	return item
}

// snapshot returns a copy of all items.
func (q *queue) snapshot() []QueueItem {
	result := make([]QueueItem, len(q.items))
	copy(result, q.items)
	return result
}

// nextWaiting returns a pointer to the first Waiting item, or nil.
func (q *queue) nextWaiting() *QueueItem {
	for i := range q.items {
		if q.items[i].Status == StatusWaiting {
			return &q.items[i]
		}
	}
	return nil
}

// presenting returns a pointer to the item currently Presenting, or nil.
func (q *queue) presenting() *QueueItem {
	for i := range q.items {
		if q.items[i].Status == StatusPresenting {
			return &q.items[i]
		}
	}
	return nil
}

// setStatus updates one item by id. Returns false if unknown.
func (q *queue) setStatus(id uuid.UUID, status QueueStatus) bool {
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Status = status
			return true
		}
	}
	return false
}

func (q *queue) clear() {
	q.items = nil
}

func (q *queue) len() int {
	return len(q.items)
}
