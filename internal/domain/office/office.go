package office

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kailas-cloud/frontdesk/internal/domain"
)

// MaxFieldLen bounds the office name and address.
const MaxFieldLen = 256

// Office is a tenant: visitors always belong to exactly one office.
// Name and address may change after creation (creator only); the ID is
// assigned by the store on insert.
type Office struct {
	id      string
	name    string
	addr    string
	creator domain.Identity
}

// New validates and creates an Office owned by creator.
func New(name, addr string, creator domain.Identity) (Office, error) {
	name = strings.TrimSpace(name)
	addr = strings.TrimSpace(addr)

	err := validation.Errors{
		"name":    validation.Validate(name, validation.Required, validation.Length(1, MaxFieldLen)),
		"addr":    validation.Validate(addr, validation.Required, validation.Length(1, MaxFieldLen)),
		"creator": validation.Validate(creator.ID, validation.Required),
	}.Filter()
	if err != nil {
		return Office{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	return Office{name: name, addr: addr, creator: creator}, nil
}

// Reconstruct creates an Office without validation (storage hydration).
func Reconstruct(id, name, addr string, creator domain.Identity) Office {
	return Office{id: id, name: name, addr: addr, creator: creator}
}

// WithID returns a copy with the store-assigned identifier set.
func (o Office) WithID(id string) Office {
	o.id = id
	return o
}

// WithDetails returns a validated copy with the name and address
// replaced. ID and creator are preserved.
func (o Office) WithDetails(name, addr string) (Office, error) {
	updated, err := New(name, addr, o.creator)
	if err != nil {
		return Office{}, err
	}
	updated.id = o.id
	return updated, nil
}

// ID returns the store-assigned office identifier.
func (o Office) ID() string { return o.id }

// Name returns the office name (unique across offices).
func (o Office) Name() string { return o.name }

// Addr returns the office address.
func (o Office) Addr() string { return o.addr }

// Creator returns the identity that created the office.
func (o Office) Creator() domain.Identity { return o.creator }

// CreatedBy reports whether the given identity created the office.
func (o Office) CreatedBy(id domain.Identity) bool {
	return o.creator.ID != "" && o.creator.ID == id.ID
}
