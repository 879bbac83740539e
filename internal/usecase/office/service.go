// Package office implements office management. Updates and deletes are
// creator-only; deletes cascade into the office's visitors (store and
// index) before the office itself goes. Every committed mutation emits
// its event best-effort.
package office

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	"github.com/kailas-cloud/frontdesk/internal/domain/event"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
)

// Summary is an office with its lazily-attached visitor count.
type Summary struct {
	Office       domoff.Office
	VisitorCount int
}

// Service handles office mutations and listings.
type Service struct {
	repo      Repository
	visitors  VisitorStore
	unindexer Unindexer
	publisher Publisher
	logger    *zap.Logger
}

// New creates an office service.
func New(repo Repository, visitors VisitorStore, unindexer Unindexer, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		visitors:  visitors,
		unindexer: unindexer,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and persists a new office, then emits OfficeNew.
func (s *Service) Create(ctx context.Context, name, addr string, creator domain.Identity) (domoff.Office, error) {
	o, err := domoff.New(name, addr, creator)
	if err != nil {
		return domoff.Office{}, err
	}

	saved, err := s.repo.Insert(ctx, o)
	if err != nil {
		return domoff.Office{}, fmt.Errorf("insert office: %w", err)
	}

	s.emit(ctx, event.OfficeCreated{Office: event.OfficeFrom(saved)})
	return saved, nil
}

// Get returns one office.
func (s *Service) Get(ctx context.Context, id string) (domoff.Office, error) {
	return s.repo.Get(ctx, id)
}

// List returns every office with its visitor count attached.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	offices, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}

	summaries := make([]Summary, 0, len(offices))
	for _, o := range offices {
		count, err := s.visitors.Count(ctx, o.ID())
		if err != nil {
			return nil, fmt.Errorf("count visitors for %s: %w", o.ID(), err)
		}
		summaries = append(summaries, Summary{Office: o, VisitorCount: count})
	}
	return summaries, nil
}

// Update changes an office's name and address. Creator only.
func (s *Service) Update(ctx context.Context, id, name, addr string, actor domain.Identity) (domoff.Office, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domoff.Office{}, err
	}
	if !current.CreatedBy(actor) {
		return domoff.Office{}, domain.ErrNotCreator
	}

	updated, err := current.WithDetails(name, addr)
	if err != nil {
		return domoff.Office{}, err
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return domoff.Office{}, fmt.Errorf("update office: %w", err)
	}

	s.emit(ctx, event.OfficeUpdated{Office: event.OfficeFrom(saved)})
	return saved, nil
}

// Delete removes an office along with all its visitors. Creator only.
// Visitors leave the store first, then the index, then the office
// itself; OfficeDelete carries the office as read before deletion.
func (s *Service) Delete(ctx context.Context, id string, actor domain.Identity) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.CreatedBy(actor) {
		return domain.ErrNotCreator
	}

	visitors, err := s.visitors.GetByOffice(ctx, id)
	if err != nil {
		return fmt.Errorf("list office visitors: %w", err)
	}

	if err := s.visitors.DeleteAllByOffice(ctx, id); err != nil {
		return fmt.Errorf("delete office visitors: %w", err)
	}
	for _, v := range visitors {
		s.unindexer.Unindex(v)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete office: %w", err)
	}

	s.emit(ctx, event.OfficeDeleted{Office: event.OfficeFrom(current)})
	return nil
}

func (s *Service) emit(ctx context.Context, e event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("type", string(e.EventType())),
			zap.Error(err),
		)
	}
}
