// Package visitor implements visitor check-in, prefix search, and the
// index synchronizer. The ordering contract for mutations is: commit to
// the store, then update the index, then emit the event. A store
// failure stops everything; an index failure after a commit degrades
// searchability but never the caller's result; a publish failure is
// logged and swallowed.
package visitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	"github.com/kailas-cloud/frontdesk/internal/domain/event"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
	"github.com/kailas-cloud/frontdesk/internal/index"
	"github.com/kailas-cloud/frontdesk/internal/metrics"
)

// Directive queries bypass the trie and go straight to the store.
const (
	directiveAll     = "all"
	directiveBetween = "between"
)

// Fields carries the caller-supplied attributes of a check-in.
type Fields struct {
	FirstName string
	LastName  string
	Company   string
	ToSee     string
}

// Service handles visitor mutations and search.
type Service struct {
	repo         Repository
	offices      OfficeReader
	idx          Index
	publisher    Publisher
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// New creates a visitor service.
func New(repo Repository, offices OfficeReader, idx Index, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		offices:      offices,
		idx:          idx,
		publisher:    publisher,
		logger:       logger,
		defaultLimit: 20,
		maxLimit:     100,
		now:          time.Now,
	}
}

// WithSearchLimits configures the default and maximum search limits.
func (s *Service) WithSearchLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// WithClock overrides the check-in clock. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create checks a visitor in: validates the fields, verifies the office
// exists, commits the record, indexes it, and emits VisitorNew. The
// record is searchable before the caller sees the response.
func (s *Service) Create(ctx context.Context, officeID string, f Fields) (domvis.Visitor, error) {
	if _, err := s.offices.Get(ctx, officeID); err != nil {
		return domvis.Visitor{}, fmt.Errorf("get office: %w", err)
	}

	v, err := domvis.New(officeID, f.FirstName, f.LastName, f.Company, f.ToSee, s.now())
	if err != nil {
		return domvis.Visitor{}, err
	}

	saved, err := s.repo.Insert(ctx, v)
	if err != nil {
		// Fail fast: the index is untouched after a failed commit.
		return domvis.Visitor{}, fmt.Errorf("insert visitor: %w", err)
	}

	s.indexVisitor(saved)
	s.emit(ctx, event.VisitorCreated{Visitor: event.VisitorFrom(saved)})

	return saved, nil
}

// Search resolves a query against the trie and hydrates the matches,
// scoped to one office. Directive queries ("all", "between <start>
// <end>") bypass the trie. Because per-token results are bounded by
// limit before intersection, multi-token queries may under-report
// under very tight limits.
func (s *Service) Search(ctx context.Context, officeID, query string, limit int) ([]domvis.Visitor, error) {
	if _, err := s.offices.Get(ctx, officeID); err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}

	tokens := strings.Fields(strings.ToLower(query))
	switch {
	case len(tokens) == 1 && tokens[0] == directiveAll:
		return s.repo.GetByOffice(ctx, officeID)
	case len(tokens) == 3 && tokens[0] == directiveBetween:
		start, end, err := parseDateRange(tokens[1], tokens[2])
		if err != nil {
			return nil, err
		}
		return s.repo.GetBetweenDates(ctx, officeID, start, end)
	}

	ids := s.idx.Search(s.clampLimit(limit), query)
	metrics.IndexSearchesTotal.Inc()
	if len(ids) == 0 {
		return []domvis.Visitor{}, nil
	}

	// The trie is global across offices; hydration re-checks parent
	// ownership so a search never returns another office's records.
	owned, err := s.repo.GetByOffice(ctx, officeID)
	if err != nil {
		return nil, fmt.Errorf("hydrate search results: %w", err)
	}
	return filterByID(owned, ids), nil
}

// SearchByDateRange returns the office's visitors with a visit date in
// [start, end] inclusive, bypassing the trie.
func (s *Service) SearchByDateRange(ctx context.Context, officeID string, start, end time.Time) ([]domvis.Visitor, error) {
	if _, err := s.offices.Get(ctx, officeID); err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date precedes start date", domain.ErrValidation)
	}
	return s.repo.GetBetweenDates(ctx, officeID, start, end)
}

// ListAll returns every visitor of an office, newest first.
func (s *Service) ListAll(ctx context.Context, officeID string) ([]domvis.Visitor, error) {
	if _, err := s.offices.Get(ctx, officeID); err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}
	return s.repo.GetByOffice(ctx, officeID)
}

// Rebuild repopulates the index from the authoritative store. It runs
// at startup, before the service accepts requests, and doubles as an
// operational recovery hook for the degraded not-searchable state.
func (s *Service) Rebuild(ctx context.Context) error {
	started := s.now()

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list all visitors: %w", err)
	}

	s.idx.Reset()
	for _, v := range all {
		for _, key := range searchKeys(v) {
			s.idx.Insert(key, v.ID())
			metrics.IndexKeysTotal.WithLabelValues("insert").Inc()
		}
	}
	metrics.IndexedRecords.Set(float64(len(all)))

	s.logger.Info("index rebuilt",
		zap.Int("records", len(all)),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// Unindex removes every searchable key of a record from the index.
// Called when records are deleted (office cascade).
func (s *Service) Unindex(v domvis.Visitor) {
	for _, key := range searchKeys(v) {
		s.idx.Remove(key, v.ID())
		metrics.IndexKeysTotal.WithLabelValues("remove").Inc()
	}
	metrics.IndexedRecords.Dec()
}

// searchKeys is the single definition of which attributes are
// searchable. Adding a field here covers both the per-mutation update
// and the full rebuild.
func searchKeys(v domvis.Visitor) []string {
	return []string{v.FirstName(), v.LastName(), v.Company(), v.ToSee(), v.VisitDate()}
}

// indexVisitor inserts the record's searchable keys. An index failure
// after a committed insert leaves the record stored but unsearchable
// until the next rebuild; that degraded state is logged, never
// surfaced, because the commit must not be rolled back for it.
func (s *Service) indexVisitor(v domvis.Visitor) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("index update failed after store commit; record not searchable until next rebuild",
				zap.String("visitor_id", v.ID()),
				zap.Any("panic", r),
			)
		}
	}()

	for _, key := range searchKeys(v) {
		s.idx.Insert(key, v.ID())
		metrics.IndexKeysTotal.WithLabelValues("insert").Inc()
	}
	metrics.IndexedRecords.Inc()
}

// emit publishes after the commit; failures are logged and swallowed —
// the caller's contract is "your data was saved", not "others were
// notified".
func (s *Service) emit(ctx context.Context, e event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("type", string(e.EventType())),
			zap.Error(err),
		)
	}
}

// filterByID keeps the office's records whose IDs the index resolved,
// preserving the store's newest-first order.
func filterByID(visitors []domvis.Visitor, ids index.IDSet) []domvis.Visitor {
	matched := make([]domvis.Visitor, 0, len(ids))
	for _, v := range visitors {
		if _, ok := ids[v.ID()]; ok {
			matched = append(matched, v)
		}
	}
	return matched
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(domvis.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date %q", domain.ErrValidation, startStr)
	}
	end, err := time.Parse(domvis.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date %q", domain.ErrValidation, endStr)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date precedes start date", domain.ErrValidation)
	}
	return start, end, nil
}
