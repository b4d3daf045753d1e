package sheets

import (
	"context"
	"sync"

	"github.com/jmorales/gastosbot/internal/service"
)

// MockMirror is a call-recording implementation of service.Mirror for testing.
type MockMirror struct {
	AppendFunc  func(ctx context.Context, row service.MirrorRow) error
	DeleteFunc  func(ctx context.Context) error
	rows        []service.MirrorRow
	deleteCount int
	appendCount int
	enabled     bool
	mu          sync.Mutex
}

// NewMockMirror creates an enabled mock mirror.
func NewMockMirror() *MockMirror {
	return &MockMirror{enabled: true}
}

// Enabled implements service.Mirror.
func (m *MockMirror) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// SetEnabled toggles the mirror on or off.
func (m *MockMirror) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Append implements service.Mirror.
func (m *MockMirror) Append(ctx context.Context, row service.MirrorRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendCount++

	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, row); err != nil {
			return err
		}
	}

	m.rows = append(m.rows, row)
	return nil
}

// DeleteLastRow implements service.Mirror.
func (m *MockMirror) DeleteLastRow(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCount++

	if m.DeleteFunc != nil {
		if err := m.DeleteFunc(ctx); err != nil {
			return err
		}
	}

	if len(m.rows) > 0 {
		m.rows = m.rows[:len(m.rows)-1]
	}
	return nil
}

// Rows returns a copy of the rows currently mirrored.
func (m *MockMirror) Rows() []service.MirrorRow {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]service.MirrorRow, len(m.rows))
	copy(rows, m.rows)
	return rows
}

// AppendCount returns how many times Append was called.
func (m *MockMirror) AppendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendCount
}

// DeleteCount returns how many times DeleteLastRow was called.
func (m *MockMirror) DeleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCount
}

// SetAppendError configures the mock to fail every Append call.
func (m *MockMirror) SetAppendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendFunc = func(_ context.Context, _ service.MirrorRow) error {
		return err
	}
}

// Reset clears all recorded calls.
func (m *MockMirror) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = nil
	m.appendCount = 0
	m.deleteCount = 0
}
