package visitor

import (
	"context"
	"time"

	"github.com/kailas-cloud/frontdesk/internal/domain/event"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
	"github.com/kailas-cloud/frontdesk/internal/index"
)

// Repository defines the storage contract for visitor records.
type Repository interface {
	Insert(ctx context.Context, v domvis.Visitor) (domvis.Visitor, error)
	GetByOffice(ctx context.Context, officeID string) ([]domvis.Visitor, error)
	GetBetweenDates(ctx context.Context, officeID string, start, end time.Time) ([]domvis.Visitor, error)
	ListAll(ctx context.Context) ([]domvis.Visitor, error)
}

// OfficeReader checks office existence before any visitor write or read.
type OfficeReader interface {
	Get(ctx context.Context, id string) (domoff.Office, error)
}

// Index is the in-memory prefix index kept consistent with the store.
type Index interface {
	Insert(key, id string)
	Remove(key, id string)
	Search(limit int, query string) index.IDSet
	Reset()
}

// Publisher delivers mutation events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e event.Event) error
}
