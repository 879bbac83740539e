// Package visitor persists visitor records as JSON documents, with
// membership sets per office and a global set for full enumeration.
// The store is authoritative: the in-memory index is always rebuilt
// from what lives here.
package visitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/frontdesk/internal/db"
	"github.com/kailas-cloud/frontdesk/internal/domain"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
)

// store is the consumer interface for visitor records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)
}

// Repo implements the visitor repository over the store facade.
type Repo struct {
	store store
}

// New creates a visitor repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists a new visitor record, assigning its identifier.
// The document is written first; set memberships follow, so a record
// is never enumerable before it is readable.
func (r *Repo) Insert(ctx context.Context, v domvis.Visitor) (domvis.Visitor, error) {
	saved := v.WithID(uuid.NewString())
	key := visitorKey(saved.ID())

	data, err := json.Marshal(toDoc(saved))
	if err != nil {
		return domvis.Visitor{}, fmt.Errorf("marshal visitor: %w", err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return domvis.Visitor{}, storeErr("json.set "+key, err)
	}
	if err := r.store.SAdd(ctx, officeVisitorsKey(saved.OfficeID()), saved.ID()); err != nil {
		return domvis.Visitor{}, storeErr("sadd office visitors", err)
	}
	if err := r.store.SAdd(ctx, allVisitorsKey, saved.ID()); err != nil {
		return domvis.Visitor{}, storeErr("sadd all visitors", err)
	}

	return saved, nil
}

// Get returns one visitor record by identifier.
func (r *Repo) Get(ctx context.Context, id string) (domvis.Visitor, error) {
	key := visitorKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domvis.Visitor{}, domain.ErrVisitorNotFound
		}
		return domvis.Visitor{}, storeErr("json.get "+key, err)
	}
	return parseDoc(id, raw)
}

// GetByOffice returns every visitor of an office, newest first
// (visit date desc, visit time desc).
func (r *Repo) GetByOffice(ctx context.Context, officeID string) ([]domvis.Visitor, error) {
	ids, err := r.store.SMembers(ctx, officeVisitorsKey(officeID))
	if err != nil {
		return nil, storeErr("smembers office visitors", err)
	}

	visitors, err := r.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	// DateLayout and TimeLayout sort lexicographically in
	// chronological order.
	sort.Slice(visitors, func(i, j int) bool {
		return sortKey(visitors[i]) > sortKey(visitors[j])
	})
	return visitors, nil
}

// GetBetweenDates returns an office's visitors whose visit date falls
// within [start, end] inclusive, newest first.
func (r *Repo) GetBetweenDates(ctx context.Context, officeID string, start, end time.Time) ([]domvis.Visitor, error) {
	all, err := r.GetByOffice(ctx, officeID)
	if err != nil {
		return nil, err
	}

	matched := make([]domvis.Visitor, 0, len(all))
	for _, v := range all {
		on := v.VisitedOn()
		if on.IsZero() {
			continue
		}
		if !on.Before(start) && !on.After(end) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// ListAll returns every visitor record in the store, all offices
// included. Used by full index rebuilds.
func (r *Repo) ListAll(ctx context.Context) ([]domvis.Visitor, error) {
	ids, err := r.store.SMembers(ctx, allVisitorsKey)
	if err != nil {
		return nil, storeErr("smembers all visitors", err)
	}
	return r.getMany(ctx, ids)
}

// DeleteAllByOffice removes every visitor of an office along with its
// membership entries.
func (r *Repo) DeleteAllByOffice(ctx context.Context, officeID string) error {
	setKey := officeVisitorsKey(officeID)
	ids, err := r.store.SMembers(ctx, setKey)
	if err != nil {
		return storeErr("smembers office visitors", err)
	}

	for _, id := range ids {
		if err := r.store.Del(ctx, visitorKey(id)); err != nil {
			return storeErr("del visitor "+id, err)
		}
	}
	if len(ids) > 0 {
		if err := r.store.SRem(ctx, allVisitorsKey, ids...); err != nil {
			return storeErr("srem all visitors", err)
		}
	}
	if err := r.store.Del(ctx, setKey); err != nil {
		return storeErr("del office visitors set", err)
	}
	return nil
}

// Count returns the number of visitors checked in at an office.
func (r *Repo) Count(ctx context.Context, officeID string) (int, error) {
	n, err := r.store.SCard(ctx, officeVisitorsKey(officeID))
	if err != nil {
		return 0, storeErr("scard office visitors", err)
	}
	return int(n), nil
}

// getMany hydrates records by ID, skipping members whose document has
// disappeared (a concurrent delete between SMEMBERS and JSON.GET).
func (r *Repo) getMany(ctx context.Context, ids []string) ([]domvis.Visitor, error) {
	visitors := make([]domvis.Visitor, 0, len(ids))
	for _, id := range ids {
		v, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrVisitorNotFound) {
				continue
			}
			return nil, err
		}
		visitors = append(visitors, v)
	}
	return visitors, nil
}

func sortKey(v domvis.Visitor) string {
	return v.VisitDate() + " " + v.VisitTime()
}

func visitorKey(id string) string {
	return domain.KeyPrefix + "visitor:" + id
}

func officeVisitorsKey(officeID string) string {
	return domain.KeyPrefix + "office:" + officeID + ":visitors"
}

const allVisitorsKey = domain.KeyPrefix + "visitors"

func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStoreUnavailable, err)
}
