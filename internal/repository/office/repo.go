// Package office persists offices as JSON documents with a membership
// set for enumeration and a name key enforcing name uniqueness.
package office

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/frontdesk/internal/db"
	"github.com/kailas-cloud/frontdesk/internal/domain"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
)

// store is the consumer interface for offices (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the office repository over the store facade.
type Repo struct {
	store store
}

// New creates an office repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists a new office, assigning its identifier. Office names
// are unique (case-insensitive) across the collection.
func (r *Repo) Insert(ctx context.Context, o domoff.Office) (domoff.Office, error) {
	nameKey := officeNameKey(o.Name())
	taken, err := r.store.Exists(ctx, nameKey)
	if err != nil {
		return domoff.Office{}, storeErr("exists "+nameKey, err)
	}
	if taken {
		return domoff.Office{}, fmt.Errorf("office %q: %w", o.Name(), domain.ErrOfficeExists)
	}

	saved := o.WithID(uuid.NewString())
	key := officeKey(saved.ID())

	data, err := json.Marshal(toDoc(saved))
	if err != nil {
		return domoff.Office{}, fmt.Errorf("marshal office: %w", err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return domoff.Office{}, storeErr("json.set "+key, err)
	}
	if err := r.store.Set(ctx, nameKey, []byte(saved.ID())); err != nil {
		return domoff.Office{}, storeErr("set "+nameKey, err)
	}
	if err := r.store.SAdd(ctx, allOfficesKey, saved.ID()); err != nil {
		return domoff.Office{}, storeErr("sadd offices", err)
	}

	return saved, nil
}

// Get returns one office by identifier.
func (r *Repo) Get(ctx context.Context, id string) (domoff.Office, error) {
	key := officeKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domoff.Office{}, domain.ErrOfficeNotFound
		}
		return domoff.Office{}, storeErr("json.get "+key, err)
	}
	return parseDoc(id, raw)
}

// GetAll returns every office, sorted by name.
func (r *Repo) GetAll(ctx context.Context) ([]domoff.Office, error) {
	ids, err := r.store.SMembers(ctx, allOfficesKey)
	if err != nil {
		return nil, storeErr("smembers offices", err)
	}

	offices := make([]domoff.Office, 0, len(ids))
	for _, id := range ids {
		o, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrOfficeNotFound) {
				continue
			}
			return nil, err
		}
		offices = append(offices, o)
	}

	sort.Slice(offices, func(i, j int) bool {
		return offices[i].Name() < offices[j].Name()
	})
	return offices, nil
}

// Update rewrites an office document, maintaining the name-uniqueness
// key when the name changed.
func (r *Repo) Update(ctx context.Context, o domoff.Office) (domoff.Office, error) {
	current, err := r.Get(ctx, o.ID())
	if err != nil {
		return domoff.Office{}, err
	}

	if !strings.EqualFold(current.Name(), o.Name()) {
		nameKey := officeNameKey(o.Name())
		taken, err := r.store.Exists(ctx, nameKey)
		if err != nil {
			return domoff.Office{}, storeErr("exists "+nameKey, err)
		}
		if taken {
			return domoff.Office{}, fmt.Errorf("office %q: %w", o.Name(), domain.ErrOfficeExists)
		}
		if err := r.store.Set(ctx, nameKey, []byte(o.ID())); err != nil {
			return domoff.Office{}, storeErr("set "+nameKey, err)
		}
		if err := r.store.Del(ctx, officeNameKey(current.Name())); err != nil {
			return domoff.Office{}, storeErr("del old name key", err)
		}
	}

	data, err := json.Marshal(toDoc(o))
	if err != nil {
		return domoff.Office{}, fmt.Errorf("marshal office: %w", err)
	}
	if err := r.store.JSONSet(ctx, officeKey(o.ID()), "$", data); err != nil {
		return domoff.Office{}, storeErr("json.set "+officeKey(o.ID()), err)
	}

	return o, nil
}

// Delete removes an office document and its membership entries.
// Visitors are not touched; callers cascade through the visitor
// repository first.
func (r *Repo) Delete(ctx context.Context, id string) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Del(ctx, officeKey(id)); err != nil {
		return storeErr("del office "+id, err)
	}
	if err := r.store.Del(ctx, officeNameKey(current.Name())); err != nil {
		return storeErr("del name key", err)
	}
	if err := r.store.SRem(ctx, allOfficesKey, id); err != nil {
		return storeErr("srem offices", err)
	}
	return nil
}

func officeKey(id string) string {
	return domain.KeyPrefix + "office:" + id
}

func officeNameKey(name string) string {
	return domain.KeyPrefix + "office:name:" + strings.ToLower(strings.TrimSpace(name))
}

const allOfficesKey = domain.KeyPrefix + "offices"

func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStoreUnavailable, err)
}
