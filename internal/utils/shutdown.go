package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type ShutdownManager struct {
	cancelFunc    context.CancelFunc
	shutdownTasks []namedTask
	mu            sync.Mutex
	log           zerolog.Logger
	timeout       time.Duration
	done          chan struct{}
	once          sync.Once
}

type namedTask struct {
	name string
	fn   func(context.Context) error
}

func NewShutdownManager(ctx context.Context, log zerolog.Logger) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	manager := &ShutdownManager{
		cancelFunc: cancel,
		log:        log.With().Str("component", "shutdown").Logger(),
		timeout:    15 * time.Second,
		done:       make(chan struct{}),
	}
	return ctx, manager
}

// Register adds a task. Tasks run in reverse registration order, so resources opened first close last.
func (sm *ShutdownManager) Register(name string, task func(context.Context) error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownTasks = append(sm.shutdownTasks, namedTask{name: name, fn: task})
}

func (sm *ShutdownManager) StartListening() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		sm.log.Info().Str("signal", sig.String()).Msg("received signal")
		sm.Shutdown()
	}()
}

func (sm *ShutdownManager) Shutdown() {
	sm.once.Do(sm.shutdown)
}

func (sm *ShutdownManager) shutdown() {
	sm.cancelFunc()

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for i := len(sm.shutdownTasks) - 1; i >= 0; i-- {
		task := sm.shutdownTasks[i]
		sm.log.Info().Str("task", task.name).Msg("shutting down")
		if err := task.fn(ctx); err != nil {
			sm.log.Error().Err(err).Str("task", task.name).Msg("error during shutdown")
		}
	}

	sm.log.Info().Msg("graceful shutdown complete")
	close(sm.done)
}

// Wait blocks until Shutdown has run every task.
func (sm *ShutdownManager) Wait() {
	<-sm.done
}
