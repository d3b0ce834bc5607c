package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"sjsage522/dealbite/config"
	"sjsage522/dealbite/helpers"
	"sjsage522/dealbite/services/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRefresher implements Refresher for testing
type MockRefresher struct {
	mu    sync.Mutex
	added map[string]int
	errs  map[string]error
	calls []string
}

var _ Refresher = (*MockRefresher)(nil)

func NewMockRefresher() *MockRefresher {
	return &MockRefresher{
		added: make(map[string]int),
		errs:  make(map[string]error),
	}
}

func (m *MockRefresher) Refresh(_ context.Context, restaurant, market string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := restaurant + ":" + market
	m.calls = append(m.calls, key)
	return m.added[key], m.errs[key]
}

func (m *MockRefresher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu      sync.Mutex
	trims   int
	trimErr error
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(context.Context, string, []byte) error {
	return nil
}

func (m *MockPublisher) TrimStreams(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trims++
	return m.trimErr
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockLogger implements the helpers.LoggerInterface for testing
type MockLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

// Ensure MockLogger implements helpers.LoggerInterface
var _ helpers.LoggerInterface = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{
		errors: make([]string, 0),
		infos:  make([]string, 0),
	}
}

func (m *MockLogger) LogError(sourceName string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, sourceName+": "+err.Error())
}

func (m *MockLogger) LogInfo(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(format, args...))
}

var testTargets = []config.Target{
	{Restaurant: "wendys", Market: "austin-tx"},
	{Restaurant: "wendys", Market: "dallas-tx"},
}

// TestWorkerRunRefreshes tests that every target is refreshed and the stream trimmed
func TestWorkerRunRefreshes(t *testing.T) {
	refresher := NewMockRefresher()
	refresher.added["wendys:austin-tx"] = 2
	refresher.added["wendys:dallas-tx"] = 1
	pub := &MockPublisher{}
	log := NewMockLogger()

	w := NewWorker(context.Background(), testTargets, refresher, pub, log, time.Second)
	added := w.runRefreshes()

	assert.Equal(t, 3, added)
	assert.ElementsMatch(t, []string{"wendys:austin-tx", "wendys:dallas-tx"}, refresher.calls)
	assert.Equal(t, 1, pub.trims)
	assert.Empty(t, log.errors, "No errors should have been logged")
}

// TestWorkerWithError tests that one failing target does not stop the others
func TestWorkerWithError(t *testing.T) {
	refresher := NewMockRefresher()
	refresher.added["wendys:austin-tx"] = 2
	refresher.errs["wendys:dallas-tx"] = errors.New("test error")
	log := NewMockLogger()

	w := NewWorker(context.Background(), testTargets, refresher, &MockPublisher{}, log, time.Second)
	added := w.runRefreshes()

	assert.Equal(t, 2, added)
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], "wendys:dallas-tx", "Error should mention the target")
	assert.Contains(t, log.errors[0], "test error", "Error should contain the error message")
}

// TestWorkerTrimError tests that trim failures are logged
func TestWorkerTrimError(t *testing.T) {
	log := NewMockLogger()
	pub := &MockPublisher{trimErr: errors.New("redis down")}

	w := NewWorker(context.Background(), nil, NewMockRefresher(), pub, log, time.Second)
	w.runRefreshes()

	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], "StreamTrimming")
}

// TestWorkerStartStopsOnCancel tests the loop exits once the context is canceled
func TestWorkerStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	refresher := NewMockRefresher()
	log := NewMockLogger()

	w := NewWorker(ctx, testTargets[:1], refresher, nil, log, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	assert.Eventually(t, func() bool { return refresher.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
