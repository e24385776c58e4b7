package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"blotch-banisher/internal/logger"
)

// componentTimeout caps how long one component may spend shutting
// down before the sequence moves on. Trail rendering is the slowest
// registered step and finishes well inside this.
const componentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Manager runs registered components' Shutdown methods exactly once,
// in reverse registration order, on window close, Escape, or signal.
type Manager struct {
	components []Shutdownable
	logger     logger.Logger
	mu         sync.Mutex
	done       chan struct{}
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		components: make([]Shutdownable, 0),
		logger:     log,
		done:       make(chan struct{}),
	}
}

// Register adds a component. Register in startup order; shutdown runs
// in the reverse.
func (m *Manager) Register(component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component)
}

// Listen routes SIGINT and SIGTERM into the shutdown sequence, so a
// Ctrl-C from the launching terminal still prints the session summary.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.done:
		}
	}()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			component.Shutdown()
		}()

		select {
		case <-finished:
		case <-time.After(componentTimeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component_index": i,
			})
		}
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

// Done closes once shutdown has begun.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
