package scheduler

import (
	"context"
	"strconv"
	"time"
)

// State is the persisted scheduler state.
type State struct {
	// NextExecution is the earliest time an automatic tick enqueues
	// endpoints. The zero time means due immediately.
	NextExecution time.Time
	// ShowStatusMessage collects a line per processed item while set.
	ShowStatusMessage bool
}

type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

type stateHash interface {
	GetState(ctx context.Context) (map[string]string, error)
	SetState(ctx context.Context, fields map[string]any) error
}

const (
	fieldNextExecution     = "next_execution"
	fieldShowStatusMessage = "show_status_message"
)

// RedisStateStore keeps State in a Redis hash.
type RedisStateStore struct {
	hash stateHash
}

func NewRedisStateStore(hash stateHash) *RedisStateStore {
	return &RedisStateStore{hash: hash}
}

func (s *RedisStateStore) Load(ctx context.Context) (State, error) {
	fields, err := s.hash.GetState(ctx)
	if err != nil {
		return State{}, err
	}

	var st State
	if v, ok := fields[fieldNextExecution]; ok {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err == nil && sec > 0 {
			st.NextExecution = time.Unix(sec, 0)
		}
	}
	st.ShowStatusMessage = fields[fieldShowStatusMessage] == "1"
	return st, nil
}

func (s *RedisStateStore) Save(ctx context.Context, st State) error {
	var next int64
	if !st.NextExecution.IsZero() {
		next = st.NextExecution.Unix()
	}
	show := 0
	if st.ShowStatusMessage {
		show = 1
	}
	return s.hash.SetState(ctx, map[string]any{
		fieldNextExecution:     next,
		fieldShowStatusMessage: show,
	})
}
