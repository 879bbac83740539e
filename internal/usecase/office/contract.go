package office

import (
	"context"

	"github.com/kailas-cloud/frontdesk/internal/domain/event"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
)

// Repository defines the storage contract for offices.
type Repository interface {
	Insert(ctx context.Context, o domoff.Office) (domoff.Office, error)
	Get(ctx context.Context, id string) (domoff.Office, error)
	GetAll(ctx context.Context) ([]domoff.Office, error)
	Update(ctx context.Context, o domoff.Office) (domoff.Office, error)
	Delete(ctx context.Context, id string) error
}

// VisitorStore cascades office deletion into visitor records and
// attaches visitor counts to office listings.
type VisitorStore interface {
	GetByOffice(ctx context.Context, officeID string) ([]domvis.Visitor, error)
	DeleteAllByOffice(ctx context.Context, officeID string) error
	Count(ctx context.Context, officeID string) (int, error)
}

// Unindexer removes a deleted record's keys from the prefix index.
type Unindexer interface {
	Unindex(v domvis.Visitor)
}

// Publisher delivers mutation events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e event.Event) error
}
