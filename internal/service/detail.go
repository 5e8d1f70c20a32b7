package service

import (
	"context"
	"sync"
)

// DetailFetch loads one entity's detail payload by identifier.
type DetailFetch[T any] func(ctx context.Context, id int64) (T, error)

// DetailState is a snapshot of a detail controller for rendering.
type DetailState[T any] struct {
	ID      int64
	Present bool
	Payload T
	Phase   Phase
}

// Detail owns the on-demand fetch of a single entity, as used by the
// view and delete-confirmation modals. Only one fetch is active at a
// time: opening a new target supersedes any in-flight fetch, and a late
// result whose id no longer matches the requested target is ignored.
type Detail[T any] struct {
	fetch DetailFetch[T]

	mu      sync.Mutex
	id      int64
	present bool
	payload T
	phase   Phase
	seq     uint64
}

// NewDetail creates an idle detail controller.
func NewDetail[T any](fetch DetailFetch[T]) *Detail[T] {
	return &Detail[T]{fetch: fetch, phase: PhaseIdle}
}

// State returns a snapshot for rendering.
func (d *Detail[T]) State() DetailState[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DetailState[T]{
		ID:      d.id,
		Present: d.present,
		Payload: d.payload,
		Phase:   d.phase,
	}
}

// Open fetches the detail payload for id. A result is committed only if
// id is still the requested target when it arrives; otherwise ErrStale
// is returned and state is untouched.
func (d *Detail[T]) Open(ctx context.Context, id int64) error {
	d.mu.Lock()
	d.id = id
	d.present = false
	d.phase = PhaseLoading
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	payload, err := d.fetch(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq || d.id != id {
		return ErrStale
	}
	if err != nil {
		d.phase = PhaseFailed
		return err
	}
	d.payload = payload
	d.present = true
	d.phase = PhaseLoaded
	return nil
}

// Close clears the payload and target regardless of phase. Any in-flight
// fetch result will arrive stale and be dropped.
func (d *Detail[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	d.id = 0
	d.present = false
	d.payload = zero
	d.phase = PhaseIdle
	d.seq++
}
