package visitor

import (
	"context"
	"encoding/json"
	"testing"

	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn  func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn  func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn      func(ctx context.Context, key string) error
	saddFn     func(ctx context.Context, key string, members ...string) error
	sremFn     func(ctx context.Context, key string, members ...string) error
	smembersFn func(ctx context.Context, key string) ([]string, error)
	scardFn    func(ctx context.Context, key string) (int64, error)
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

func (m *mockStore) SCard(ctx context.Context, key string) (int64, error) {
	if m.scardFn != nil {
		return m.scardFn(ctx, key)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

// docJSON renders a stored document the way JSON.GET "$" returns it:
// an array with the document at index 0.
func docJSON(t *testing.T, v domvis.Visitor) []byte {
	t.Helper()
	data, err := json.Marshal([]visitorDoc{toDoc(v)})
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return data
}

func testVisitor(t *testing.T, id, date, timeOfDay string) domvis.Visitor {
	t.Helper()
	return domvis.Reconstruct(id, "off-1", "Ada", "Lovelace", "Acme", "Bob", date, timeOfDay)
}
