package visitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	"github.com/kailas-cloud/frontdesk/internal/domain/event"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
	"github.com/kailas-cloud/frontdesk/internal/index"
)

// --- Mocks ---

type mockRepo struct {
	inserted      []domvis.Visitor
	insertErr     error
	byOffice      []domvis.Visitor
	byOfficeErr   error
	betweenResult []domvis.Visitor
	betweenErr    error
	betweenStart  time.Time
	betweenEnd    time.Time
	allResult     []domvis.Visitor
	allErr        error
	nextID        string
}

func (m *mockRepo) Insert(_ context.Context, v domvis.Visitor) (domvis.Visitor, error) {
	if m.insertErr != nil {
		return domvis.Visitor{}, m.insertErr
	}
	saved := v.WithID(m.nextID)
	m.inserted = append(m.inserted, saved)
	return saved, nil
}

func (m *mockRepo) GetByOffice(_ context.Context, _ string) ([]domvis.Visitor, error) {
	return m.byOffice, m.byOfficeErr
}

func (m *mockRepo) GetBetweenDates(_ context.Context, _ string, start, end time.Time) ([]domvis.Visitor, error) {
	m.betweenStart, m.betweenEnd = start, end
	return m.betweenResult, m.betweenErr
}

func (m *mockRepo) ListAll(_ context.Context) ([]domvis.Visitor, error) {
	return m.allResult, m.allErr
}

type mockOffices struct {
	getErr error
}

func (m *mockOffices) Get(_ context.Context, id string) (domoff.Office, error) {
	if m.getErr != nil {
		return domoff.Office{}, m.getErr
	}
	return domoff.Reconstruct(id, "HQ", "1 Main St", domain.Identity{ID: "user-1"}), nil
}

type mockIndex struct {
	inserts       [][2]string // key, id
	removes       [][2]string
	searchResult  index.IDSet
	searchLimit   int
	searchQuery   string
	resets        int
	panicOnInsert bool
}

func (m *mockIndex) Insert(key, id string) {
	if m.panicOnInsert {
		panic("index corrupted")
	}
	m.inserts = append(m.inserts, [2]string{key, id})
}

func (m *mockIndex) Remove(key, id string) {
	m.removes = append(m.removes, [2]string{key, id})
}

func (m *mockIndex) Search(limit int, query string) index.IDSet {
	m.searchLimit = limit
	m.searchQuery = query
	return m.searchResult
}

func (m *mockIndex) Reset() { m.resets++ }

type mockPublisher struct {
	published []event.Event
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, e event.Event) error {
	m.published = append(m.published, e)
	return m.err
}

func makeVisitor(t *testing.T, id, officeID, first, last, company, toSee string) domvis.Visitor {
	t.Helper()
	return domvis.Reconstruct(id, officeID, first, last, company, toSee, "2026-03-14", "09:00:00")
}

func newService(repo *mockRepo, offices *mockOffices, idx Index, pub *mockPublisher) *Service {
	return New(repo, offices, idx, pub, zap.NewNop())
}

var fields = Fields{FirstName: "Ada", LastName: "Lovelace", Company: "Acme", ToSee: "Bob"}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	repo := &mockRepo{nextID: "vis-1"}
	idx := &mockIndex{}
	pub := &mockPublisher{}
	svc := newService(repo, &mockOffices{}, idx, pub)

	v, err := svc.Create(context.Background(), "off-1", fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID() != "vis-1" {
		t.Errorf("expected store-assigned id, got %q", v.ID())
	}

	// One key per searchable attribute: first, last, company, toSee, date.
	if len(idx.inserts) != 5 {
		t.Fatalf("expected 5 index inserts, got %d: %v", len(idx.inserts), idx.inserts)
	}
	for _, ins := range idx.inserts {
		if ins[1] != "vis-1" {
			t.Errorf("expected all keys indexed under 'vis-1', got %q", ins[1])
		}
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.published))
	}
	if pub.published[0].EventType() != event.TypeVisitorCreated {
		t.Errorf("expected VisitorNew event, got %q", pub.published[0].EventType())
	}
}

func TestCreate_OfficeMissing(t *testing.T) {
	repo := &mockRepo{nextID: "vis-1"}
	idx := &mockIndex{}
	pub := &mockPublisher{}
	svc := newService(repo, &mockOffices{getErr: domain.ErrOfficeNotFound}, idx, pub)

	_, err := svc.Create(context.Background(), "off-missing", fields)
	if !errors.Is(err, domain.ErrOfficeNotFound) {
		t.Fatalf("expected ErrOfficeNotFound, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Error("nothing may be stored for a missing office")
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	repo := &mockRepo{nextID: "vis-1"}
	idx := &mockIndex{}
	pub := &mockPublisher{}
	svc := newService(repo, &mockOffices{}, idx, pub)

	_, err := svc.Create(context.Background(), "off-1", Fields{FirstName: "  ", LastName: "L", Company: "C", ToSee: "T"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.inserted) != 0 || len(idx.inserts) != 0 || len(pub.published) != 0 {
		t.Error("a rejected check-in must not touch store, index, or publisher")
	}
}

func TestCreate_StoreFailureIsFailFast(t *testing.T) {
	storeErr := errors.New("redis: connection refused")
	repo := &mockRepo{insertErr: storeErr}
	idx := &mockIndex{}
	pub := &mockPublisher{}
	svc := newService(repo, &mockOffices{}, idx, pub)

	_, err := svc.Create(context.Background(), "off-1", fields)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error surfaced, got %v", err)
	}
	if len(idx.inserts) != 0 {
		t.Error("index must stay untouched after a failed commit")
	}
	if len(pub.published) != 0 {
		t.Error("no event may be emitted for an uncommitted record")
	}
}

func TestCreate_IndexPanicDoesNotFailCommit(t *testing.T) {
	repo := &mockRepo{nextID: "vis-1"}
	idx := &mockIndex{panicOnInsert: true}
	pub := &mockPublisher{}
	svc := newService(repo, &mockOffices{}, idx, pub)

	v, err := svc.Create(context.Background(), "off-1", fields)
	if err != nil {
		t.Fatalf("committed record must be returned despite index failure: %v", err)
	}
	if v.ID() != "vis-1" {
		t.Errorf("expected id 'vis-1', got %q", v.ID())
	}
	if len(pub.published) != 1 {
		t.Error("event must still be emitted after a committed insert")
	}
}

func TestCreate_PublishFailureIsSwallowed(t *testing.T) {
	repo := &mockRepo{nextID: "vis-1"}
	idx := &mockIndex{}
	pub := &mockPublisher{err: errors.New("channel down")}
	svc := newService(repo, &mockOffices{}, idx, pub)

	v, err := svc.Create(context.Background(), "off-1", fields)
	if err != nil {
		t.Fatalf("publish failure must not surface: %v", err)
	}
	if v.ID() != "vis-1" {
		t.Errorf("expected id 'vis-1', got %q", v.ID())
	}
}

// --- Search ---

func TestSearch_HydratesAndFiltersByOffice(t *testing.T) {
	mine := makeVisitor(t, "vis-1", "off-1", "Ada", "Lovelace", "Acme", "Bob")
	alsoMine := makeVisitor(t, "vis-2", "off-1", "Alan", "Turing", "Acme", "Bob")
	repo := &mockRepo{byOffice: []domvis.Visitor{alsoMine, mine}}
	// The index is global: vis-3 belongs to another office and must be
	// dropped at hydration.
	idx := &mockIndex{searchResult: index.IDSet{"vis-1": {}, "vis-3": {}}}
	svc := newService(repo, &mockOffices{}, idx, &mockPublisher{})

	got, err := svc.Search(context.Background(), "off-1", "ada", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "vis-1" {
		t.Fatalf("expected only vis-1, got %v", got)
	}
	if idx.searchQuery != "ada" {
		t.Errorf("expected query passed through, got %q", idx.searchQuery)
	}
}

func TestSearch_EmptyResultSkipsHydration(t *testing.T) {
	repo := &mockRepo{byOfficeErr: errors.New("must not be called")}
	idx := &mockIndex{searchResult: index.IDSet{}}
	svc := newService(repo, &mockOffices{}, idx, &mockPublisher{})

	got, err := svc.Search(context.Background(), "off-1", "nobody", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestSearch_ClampsLimit(t *testing.T) {
	idx := &mockIndex{searchResult: index.IDSet{}}
	svc := newService(&mockRepo{}, &mockOffices{}, idx, &mockPublisher{}).
		WithSearchLimits(20, 100)

	if _, err := svc.Search(context.Background(), "off-1", "x", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.searchLimit != 20 {
		t.Errorf("expected default limit 20, got %d", idx.searchLimit)
	}

	if _, err := svc.Search(context.Background(), "off-1", "x", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.searchLimit != 100 {
		t.Errorf("expected limit capped at 100, got %d", idx.searchLimit)
	}
}

func TestSearch_AllDirective(t *testing.T) {
	everyone := []domvis.Visitor{makeVisitor(t, "vis-1", "off-1", "Ada", "L", "A", "B")}
	repo := &mockRepo{byOffice: everyone}
	idx := &mockIndex{}
	svc := newService(repo, &mockOffices{}, idx, &mockPublisher{})

	got, err := svc.Search(context.Background(), "off-1", "  ALL ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the office roster, got %v", got)
	}
	if idx.searchQuery != "" {
		t.Error("directive queries must bypass the trie")
	}
}

func TestSearch_BetweenDirective(t *testing.T) {
	repo := &mockRepo{betweenResult: []domvis.Visitor{}}
	svc := newService(repo, &mockOffices{}, &mockIndex{}, &mockPublisher{})

	_, err := svc.Search(context.Background(), "off-1", "between 2026-03-01 2026-03-31", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.betweenStart.Format(domvis.DateLayout) != "2026-03-01" {
		t.Errorf("unexpected start %v", repo.betweenStart)
	}
	if repo.betweenEnd.Format(domvis.DateLayout) != "2026-03-31" {
		t.Errorf("unexpected end %v", repo.betweenEnd)
	}
}

func TestSearch_BetweenDirectiveBadDates(t *testing.T) {
	svc := newService(&mockRepo{}, &mockOffices{}, &mockIndex{}, &mockPublisher{})

	cases := []string{
		"between tomorrow 2026-03-31",
		"between 2026-03-01 someday",
		"between 2026-03-31 2026-03-01", // end before start
	}
	for _, q := range cases {
		if _, err := svc.Search(context.Background(), "off-1", q, 10); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("query %q: expected ErrValidation, got %v", q, err)
		}
	}
}

func TestSearch_OfficeMissing(t *testing.T) {
	svc := newService(&mockRepo{}, &mockOffices{getErr: domain.ErrOfficeNotFound}, &mockIndex{}, &mockPublisher{})

	_, err := svc.Search(context.Background(), "off-missing", "ada", 10)
	if !errors.Is(err, domain.ErrOfficeNotFound) {
		t.Fatalf("expected ErrOfficeNotFound, got %v", err)
	}
}

// --- SearchByDateRange ---

func TestSearchByDateRange_EndBeforeStart(t *testing.T) {
	svc := newService(&mockRepo{}, &mockOffices{}, &mockIndex{}, &mockPublisher{})

	start := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.SearchByDateRange(context.Background(), "off-1", start, end)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// --- Rebuild / Unindex ---

func TestRebuild_ResetsThenReindexesEverything(t *testing.T) {
	all := []domvis.Visitor{
		makeVisitor(t, "vis-1", "off-1", "Ada", "Lovelace", "Acme", "Bob"),
		makeVisitor(t, "vis-2", "off-2", "Alan", "Turing", "Bletchley", "Carol"),
	}
	repo := &mockRepo{allResult: all}
	idx := &mockIndex{}
	svc := newService(repo, &mockOffices{}, idx, &mockPublisher{})

	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.resets != 1 {
		t.Errorf("expected one reset, got %d", idx.resets)
	}
	if len(idx.inserts) != 10 {
		t.Errorf("expected 5 keys per record, got %d inserts", len(idx.inserts))
	}
}

func TestRebuild_StoreFailure(t *testing.T) {
	listErr := errors.New("redis: connection refused")
	repo := &mockRepo{allErr: listErr}
	idx := &mockIndex{}
	svc := newService(repo, &mockOffices{}, idx, &mockPublisher{})

	if err := svc.Rebuild(context.Background()); !errors.Is(err, listErr) {
		t.Fatalf("expected store error surfaced, got %v", err)
	}
	if idx.resets != 0 {
		t.Error("the index must keep serving its old state when the rebuild read fails")
	}
}

func TestUnindex_RemovesEverySearchableKey(t *testing.T) {
	idx := &mockIndex{}
	svc := newService(&mockRepo{}, &mockOffices{}, idx, &mockPublisher{})

	svc.Unindex(makeVisitor(t, "vis-1", "off-1", "Ada", "Lovelace", "Acme", "Bob"))

	if len(idx.removes) != 5 {
		t.Fatalf("expected 5 removals, got %d", len(idx.removes))
	}
	for _, rem := range idx.removes {
		if rem[1] != "vis-1" {
			t.Errorf("expected removals for 'vis-1', got %q", rem[1])
		}
	}
}

// --- End to end against the real trie ---

func TestCreateThenSearch_WithRealIndex(t *testing.T) {
	repo := &mockRepo{nextID: "vis-1"}
	tr := index.New()
	svc := newService(repo, &mockOffices{}, tr, &mockPublisher{})

	v, err := svc.Create(context.Background(), "off-1", fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.byOffice = []domvis.Visitor{v}

	got, err := svc.Search(context.Background(), "off-1", "lovel", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "vis-1" {
		t.Fatalf("expected the fresh record searchable, got %v", got)
	}

	// Searchable by company prefix too, any casing.
	got, err = svc.Search(context.Background(), "off-1", "ACM", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected company prefix match, got %v", got)
	}

	svc.Unindex(v)
	got, err = svc.Search(context.Background(), "off-1", "lovel", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing after unindex, got %v", got)
	}
}
