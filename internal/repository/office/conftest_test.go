package office

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn  func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn  func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn      func(ctx context.Context, key string) error
	existsFn   func(ctx context.Context, key string) (bool, error)
	getFn      func(ctx context.Context, key string) ([]byte, error)
	setFn      func(ctx context.Context, key string, value []byte) error
	saddFn     func(ctx context.Context, key string, members ...string) error
	sremFn     func(ctx context.Context, key string, members ...string) error
	smembersFn func(ctx context.Context, key string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return []byte("[]"), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) SAdd(ctx context.Context, key string, members ...string) error {
	if m.saddFn != nil {
		return m.saddFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SRem(ctx context.Context, key string, members ...string) error {
	if m.sremFn != nil {
		return m.sremFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

// docJSON renders a stored document the way JSON.GET "$" returns it:
// an array with the document at index 0.
func docJSON(t *testing.T, o domoff.Office) []byte {
	t.Helper()
	data, err := json.Marshal([]officeDoc{toDoc(o)})
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return data
}

func testOffice(t *testing.T, id, name string) domoff.Office {
	t.Helper()
	return domoff.Reconstruct(id, name, "1 Main St", domain.Identity{ID: "user-1", UserName: "ada"})
}
