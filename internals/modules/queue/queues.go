package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"endpoint-status/pkg/apperror"

	"github.com/google/uuid"
)

var ErrCorruptItem = errors.New("corrupt queue item")

// Item references one endpoint waiting on a named queue.
type Item struct {
	ID         uuid.UUID `json:"id"`
	EndpointID string    `json:"endpoint_id"`
	Queue      string    `json:"queue"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Backend is a set of durable FIFO lists, satisfied by *redisstore.Client.
type Backend interface {
	PushQueue(ctx context.Context, queue string, item []byte) error
	PopQueue(ctx context.Context, queue string) ([]byte, bool, error)
	QueueLen(ctx context.Context, queue string) (int64, error)
}

// Queues is the fixed set of configured queues. The first name is the
// primary queue.
type Queues struct {
	backend Backend
	names   []string
	now     func() time.Time
}

func NewQueues(backend Backend, names []string) *Queues {
	return &Queues{
		backend: backend,
		names:   slices.Clone(names),
		now:     time.Now,
	}
}

func (q *Queues) Names() []string {
	return slices.Clone(q.names)
}

func (q *Queues) Primary() string {
	if len(q.names) == 0 {
		return ""
	}
	return q.names[0]
}

func (q *Queues) Has(name string) bool {
	return slices.Contains(q.names, name)
}

// Worker is the 1-based position of name among the configured queues.
func (q *Queues) Worker(name string) int {
	return slices.Index(q.names, name) + 1
}

func (q *Queues) checkName(op, name string) error {
	if !q.Has(name) {
		return apperror.Invalid(op, fmt.Sprintf("unknown queue %q", name))
	}
	return nil
}

func (q *Queues) Enqueue(ctx context.Context, name, endpointID string) (Item, error) {
	const op = "queue.enqueue"

	if err := q.checkName(op, name); err != nil {
		return Item{}, err
	}

	item := Item{
		ID:         uuid.New(),
		EndpointID: endpointID,
		Queue:      name,
		EnqueuedAt: q.now().UTC(),
	}
	body, err := json.Marshal(item)
	if err != nil {
		return Item{}, apperror.New(apperror.Internal, op, err)
	}
	if err := q.backend.PushQueue(ctx, name, body); err != nil {
		return Item{}, apperror.New(apperror.Dependency, op, err).WithMessage("queue backend unavailable")
	}
	return item, nil
}

// DequeueNext removes and returns the head of the queue, or nil when the
// queue is empty. An undecodable entry is removed and reported with
// ErrCorruptItem.
func (q *Queues) DequeueNext(ctx context.Context, name string) (*Item, error) {
	const op = "queue.dequeue"

	if err := q.checkName(op, name); err != nil {
		return nil, err
	}

	body, ok, err := q.backend.PopQueue(ctx, name)
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err).WithMessage("queue backend unavailable")
	}
	if !ok {
		return nil, nil
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil || item.EndpointID == "" {
		return nil, fmt.Errorf("%w on %s: %q", ErrCorruptItem, name, body)
	}
	return &item, nil
}

func (q *Queues) Size(ctx context.Context, name string) (int, error) {
	const op = "queue.size"

	if err := q.checkName(op, name); err != nil {
		return 0, err
	}
	n, err := q.backend.QueueLen(ctx, name)
	if err != nil {
		return 0, apperror.New(apperror.Dependency, op, err).WithMessage("queue backend unavailable")
	}
	return int(n), nil
}

func (q *Queues) Sizes(ctx context.Context) (map[string]int, error) {
	sizes := make(map[string]int, len(q.names))
	for _, name := range q.names {
		n, err := q.Size(ctx, name)
		if err != nil {
			return nil, err
		}
		sizes[name] = n
	}
	return sizes, nil
}
