package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatwire/realtime-service/internal/domain/model"
)

// State is the lifecycle position of one transport session.
//
//go:generate stringer -type=State
type State int32

const (
	// Unauthenticated is the initial state; only auth and ping are serviced.
	Unauthenticated State = iota + 1
	// Authenticated means the session is bound to a user and registered.
	Authenticated
	// Closed is terminal; reached from any state on transport close or error.
	Closed
)

// ErrAlreadyBound is returned when a session is bound to a second identity.
// A session carries exactly one user for its whole lifetime.
var ErrAlreadyBound = errors.New("registry: session already bound to a user")

// Session is one live duplex connection. The transport layer owns the socket;
// the registry only references the session and pushes encoded frames into its
// outbox. Auth state transitions happen on the connection's own goroutine,
// while Close may race in from either pump, so both are guarded.
type Session struct {
	id     uuid.UUID
	outbox chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	state State
	user  *model.User

	closeOnce sync.Once
}

// NewSession creates an unauthenticated session whose lifetime is scoped to
// the given transport context. outboxSize bounds the per-session send buffer.
func NewSession(ctx context.Context, outboxSize int) *Session {
	childCtx, cancel := context.WithCancel(ctx)
	return &Session{
		id:     uuid.New(),
		outbox: make(chan []byte, outboxSize),
		ctx:    childCtx,
		cancel: cancel,
		state:  Unauthenticated,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the bound identity, or nil before authentication. The binding
// survives Close so disconnect cleanup can still resolve the user.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Bind transitions Unauthenticated -> Authenticated exactly once. A second
// bind attempt fails regardless of the identity offered.
func (s *Session) Bind(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		return ErrAlreadyBound
	}
	if s.state == Closed {
		return errors.New("registry: cannot bind a closed session")
	}
	s.user = user
	s.state = Authenticated
	return nil
}

// Send queues one encoded frame for delivery, waiting up to timeout for
// buffer space. It reports false when the session is closed or the buffer
// stayed full; the caller skips the session either way — a dead session is
// reaped by its own close handler, not by the sender.
func (s *Session) Send(data []byte, timeout time.Duration) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-s.ctx.Done():
		return false
	case s.outbox <- data:
		return true
	case <-t.C:
		return false
	}
}

// Outbox is drained by the transport's write pump.
func (s *Session) Outbox() <-chan []byte { return s.outbox }

// Done signals session teardown to the pumps.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Close tears the session down. Safe to call from any goroutine and any
// number of times; only the first call has effect. The outbox channel is
// deliberately left open — pumps exit via Done, so a racing Send can never
// panic on a closed channel.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = Closed
		s.mu.Unlock()
		s.cancel()
	})
}
