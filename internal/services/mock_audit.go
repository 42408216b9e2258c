package services

import "sync"

// MockAuditSink collects audit events in memory for assertions.
type MockAuditSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

var _ AuditSink = (*MockAuditSink)(nil)

func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

func (m *MockAuditSink) Record(event AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of everything recorded so far
func (m *MockAuditSink) Events() []AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AuditEvent, len(m.events))
	copy(out, m.events)
	return out
}
