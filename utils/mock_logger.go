package utils

import "sync"

// MockLogger records log calls for assertions in tests. Unlike the real
// logger it never filters by level.
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
	Warns    []string
	Errors   []string
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) { m.record(msg) }
func (m *MockLogger) Info(msg string, keysAndValues ...any)  { m.record(msg) }

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.mu.Lock()
	m.Warns = append(m.Warns, msg)
	m.mu.Unlock()
	m.record(msg)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.mu.Lock()
	m.Errors = append(m.Errors, msg)
	m.mu.Unlock()
	m.record(msg)
}

func (m *MockLogger) SetLevel(level LogLevel) {}

func (m *MockLogger) record(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}
