// fake_service.go - Fake property service for handler tests
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/property-sync/backend/internal/models"
	"github.com/property-sync/backend/internal/pipeline"
)

// ErrNotConfigured is returned by FakeService methods without a stub.
var ErrNotConfigured = errors.New("fake service: method not configured")

// FakeService implements api.PropertyService with overridable funcs and
// records every call.
type FakeService struct {
	ConvertFunc func(ctx context.Context, url string) ([]models.PropertyRecord, error)
	PersistFunc func(ctx context.Context, url, store, table string) (pipeline.SyncResult, error)
	ReadAllFunc func(ctx context.Context, store, table string) ([]models.Row, error)
	StoresFunc  func(ctx context.Context) ([]models.StoreInfo, error)

	mu    sync.Mutex
	calls []Call
}

// Call is one recorded invocation.
type Call struct {
	Method string
	Args   []string
}

// NewFakeService creates a FakeService with no stubs.
func NewFakeService() *FakeService {
	return &FakeService{}
}

func (f *FakeService) record(method string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of the recorded calls.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeService) Convert(ctx context.Context, url string) ([]models.PropertyRecord, error) {
	f.record("Convert", url)
	if f.ConvertFunc == nil {
		return nil, ErrNotConfigured
	}
	return f.ConvertFunc(ctx, url)
}

func (f *FakeService) Persist(ctx context.Context, url, store, table string) (pipeline.SyncResult, error) {
	f.record("Persist", url, store, table)
	if f.PersistFunc == nil {
		return pipeline.SyncResult{}, ErrNotConfigured
	}
	return f.PersistFunc(ctx, url, store, table)
}

func (f *FakeService) ReadAll(ctx context.Context, store, table string) ([]models.Row, error) {
	f.record("ReadAll", store, table)
	if f.ReadAllFunc == nil {
		return nil, ErrNotConfigured
	}
	return f.ReadAllFunc(ctx, store, table)
}

func (f *FakeService) Stores(ctx context.Context) ([]models.StoreInfo, error) {
	f.record("Stores")
	if f.StoresFunc == nil {
		return nil, ErrNotConfigured
	}
	return f.StoresFunc(ctx)
}
