package lock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrTimeout is returned when a lock could not be acquired within the wait
// bound. It is distinct from any business error raised by the guarded action:
// a timed-out caller knows only that the outcome is unknown, not that the
// operation was rejected.
var ErrTimeout = shared.NewDomainError(shared.CodeLockTimeout, "Timed out waiting for resource lock")

// DefaultAcquireTimeout bounds lock waits when the caller passes no timeout.
const DefaultAcquireTimeout = 3 * time.Second

// KeyedRegistry provides mutual exclusion scoped to a resource key. Two
// operations on the same key serialize; operations on different keys run
// fully in parallel. Entries are created lazily on first use and removed
// as soon as the last holder or waiter is gone, so the table does not grow
// with key cardinality.
//
// The registry does not detect deadlocks. Callers that hold more than one
// key at a time must acquire them in a globally consistent order; WithLockAll
// enforces that order (ascending key) for multi-key sections.
type KeyedRegistry struct {
	mu             sync.Mutex
	entries        map[string]*lockEntry
	defaultTimeout time.Duration
	logger         *zap.Logger
}

// lockEntry is a channel-based mutex plus a reference count covering the
// holder and all waiters. The entry is removed from the table when refs
// drops to zero.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Option configures a KeyedRegistry
type Option func(*KeyedRegistry)

// WithDefaultTimeout overrides the wait bound used when a caller passes a
// non-positive timeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *KeyedRegistry) {
		if d > 0 {
			r.defaultTimeout = d
		}
	}
}

// WithLogger attaches a logger for contention diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(r *KeyedRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewKeyedRegistry creates an empty registry
func NewKeyedRegistry(opts ...Option) *KeyedRegistry {
	r := &KeyedRegistry{
		entries:        make(map[string]*lockEntry),
		defaultTimeout: DefaultAcquireTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of live lock entries. Used by stats endpoints and
// leak tests; a quiescent registry reports zero.
func (r *KeyedRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// checkout returns the entry for key, creating it if needed, and counts the
// caller as a reference.
func (r *KeyedRegistry) checkout(key string) *lockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		r.entries[key] = e
	}
	e.refs++
	return e
}

// checkin drops the caller's reference and removes the entry once nobody
// holds or waits on it.
func (r *KeyedRegistry) checkin(key string, e *lockEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(r.entries, key)
	}
}

// acquire blocks until the key's lock is free, the timeout elapses, or ctx is
// done. On success the caller holds the lock and the entry reference; both
// are released via release().
func (r *KeyedRegistry) acquire(ctx context.Context, key string, timeout time.Duration) (*lockEntry, error) {
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	e := r.checkout(key)

	select {
	case e.sem <- struct{}{}:
		return e, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return e, nil
	case <-timer.C:
		r.checkin(key, e)
		r.logger.Debug("lock acquisition timed out",
			zap.String("key", key),
			zap.Duration("timeout", timeout))
		return nil, ErrTimeout
	case <-ctx.Done():
		r.checkin(key, e)
		return nil, ctx.Err()
	}
}

// acquireUntil is acquire with an absolute deadline. A deadline already in
// the past fails immediately with ErrTimeout instead of falling back to the
// default wait bound.
func (r *KeyedRegistry) acquireUntil(ctx context.Context, key string, deadline time.Time) (*lockEntry, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		r.logger.Debug("lock acquisition timed out",
			zap.String("key", key),
			zap.Duration("timeout", 0))
		return nil, ErrTimeout
	}
	return r.acquire(ctx, key, remaining)
}

// release unlocks the key and drops the entry reference
func (r *KeyedRegistry) release(key string, e *lockEntry) {
	<-e.sem
	r.checkin(key, e)
}

// WithLock runs action while holding the lock for key. The lock is released
// on every exit path before the action's result or error is propagated.
// A nil return from acquire distinguishes contention (ErrTimeout) from
// whatever the action itself returns.
func (r *KeyedRegistry) WithLock(ctx context.Context, key string, timeout time.Duration, action func() error) error {
	e, err := r.acquire(ctx, key, timeout)
	if err != nil {
		return err
	}
	defer r.release(key, e)
	return action()
}

// WithLockAll runs action while holding the locks for every key. Keys are
// deduplicated and acquired in ascending order, which gives all multi-key
// callers a total order and makes circular wait impossible. The timeout
// bounds the whole acquisition phase, not each key, so an n-key caller
// waits at most timeout in aggregate. On a timeout partway through,
// already-acquired locks are released before ErrTimeout is returned.
func (r *KeyedRegistry) WithLockAll(ctx context.Context, keys []string, timeout time.Duration, action func() error) error {
	ordered := dedupSorted(keys)
	if len(ordered) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "At least one lock key is required")
	}
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	deadline := time.Now().Add(timeout)

	held := make([]*lockEntry, 0, len(ordered))
	for _, key := range ordered {
		e, err := r.acquireUntil(ctx, key, deadline)
		if err != nil {
			for i := len(held) - 1; i >= 0; i-- {
				r.release(ordered[i], held[i])
			}
			return err
		}
		held = append(held, e)
	}
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			r.release(ordered[i], held[i])
		}
	}()
	return action()
}

// TryLock acquires the lock for key, waiting at most timeout. It returns
// false if the wait bound elapsed. Callers own the release and must pair a
// true return with exactly one Unlock.
func (r *KeyedRegistry) TryLock(key string, timeout time.Duration) bool {
	e, err := r.acquire(context.Background(), key, timeout)
	if err != nil {
		return false
	}
	// Keep the reference until Unlock; the entry must survive while held.
	_ = e
	return true
}

// Unlock releases a lock previously acquired with TryLock. Unlocking a key
// that is not held is a programming error and is reported as such.
func (r *KeyedRegistry) Unlock(key string) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return shared.NewDomainErrorf("LOCK_NOT_HELD", "No lock held for key %q", key)
	}
	select {
	case <-e.sem:
	default:
		return shared.NewDomainErrorf("LOCK_NOT_HELD", "No lock held for key %q", key)
	}
	r.checkin(key, e)
	return nil
}

// dedupSorted returns the unique keys in ascending order
func dedupSorted(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	sort.Strings(ordered)
	out := ordered[:1]
	for _, k := range ordered[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}
