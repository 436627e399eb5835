package connectivity

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/offsync/internal/logging"
)

// Source is a read-only view of connectivity.
type Source interface {
	Online() bool

	// Subscribe returns a channel that receives the new state after each
	// transition, and a func that ends the subscription and closes the
	// channel. A slow reader only ever sees the latest state.
	Subscribe() (<-chan bool, func())
}

type Monitor struct {
	logger logging.Logger

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]chan bool
}

var _ Source = (*Monitor)(nil)

func NewMonitor(online bool, logger logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Monitor{
		logger: logger,
		online: online,
		subs:   make(map[int]chan bool),
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the current state and notifies subscribers if it changed.
// It reports whether a transition happened.
func (m *Monitor) Set(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return false
	}
	m.online = online

	for _, ch := range m.subs {
		publish(ch, online)
	}

	mode := "offline"
	if online {
		mode = "online"
	}
	m.logger.Info(context.Background(), "connectivity changed", "mode", mode, "subscribers", len(m.subs))
	return true
}

// publish replaces whatever the subscriber has not read yet. Only the
// monitor sends, under m.mu, so the second send cannot block.
func publish(ch chan bool, v bool) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan bool, 1)
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
