package mocks

import (
	"context"

	"github.com/sorenkld/hfbridge/internal/upstream"
)

// MockGenerator implements the Generator interface for testing. Calls
// counts every Generate invocation so tests can assert that no upstream
// call happened.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req *upstream.GenerationRequest) (string, error)
	Calls        int
}

func (m *MockGenerator) Generate(ctx context.Context, req *upstream.GenerationRequest) (string, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "mock response", nil
}
