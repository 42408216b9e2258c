package services

import "context"

// MockIdentity resolves handles deterministically for testing.
type MockIdentity struct{}

var _ Identity = (*MockIdentity)(nil)

func NewMockIdentity() *MockIdentity {
	return &MockIdentity{}
}

func (m *MockIdentity) Resolve(ctx context.Context, handle string) (string, error) {
	return "id-" + handle, nil
}
