// Package event defines the typed notifications emitted after committed
// mutations. The set of variants is closed: payload() is unexported, so
// no event type can be added outside this package and consumers can
// switch exhaustively on Type.
package event

import (
	"encoding/json"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	"github.com/kailas-cloud/frontdesk/internal/domain/office"
	"github.com/kailas-cloud/frontdesk/internal/domain/visitor"
)

// Type discriminates event variants on the wire. The values are the
// message type strings the dashboard gateway already dispatches on.
type Type string

const (
	// TypeOfficeCreated announces a new office.
	TypeOfficeCreated Type = "OfficeNew"
	// TypeOfficeUpdated announces changed office details.
	TypeOfficeUpdated Type = "OfficeUpdate"
	// TypeOfficeDeleted announces an office removal (visitors included).
	TypeOfficeDeleted Type = "OfficeDelete"
	// TypeVisitorCreated announces a visitor check-in.
	TypeVisitorCreated Type = "VisitorNew"
)

// Event is one committed mutation, carrying the affected entity in
// full so consumers never need a follow-up read. Delivery is
// best-effort and at-least-once; consumers must tolerate duplicates.
type Event interface {
	EventType() Type
	payload() any
}

// Office is the wire representation of an office.
type Office struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Addr    string          `json:"addr"`
	Creator domain.Identity `json:"creator"`
}

// Visitor is the wire representation of a visitor record.
type Visitor struct {
	ID        string `json:"id"`
	OfficeID  string `json:"officeID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	ToSee     string `json:"toSee"`
	VisitDate string `json:"visitDate"`
	VisitTime string `json:"visitTime"`
}

// OfficeFrom materializes an office for the wire.
func OfficeFrom(o office.Office) Office {
	return Office{ID: o.ID(), Name: o.Name(), Addr: o.Addr(), Creator: o.Creator()}
}

// VisitorFrom materializes a visitor record for the wire.
func VisitorFrom(v visitor.Visitor) Visitor {
	return Visitor{
		ID:        v.ID(),
		OfficeID:  v.OfficeID(),
		FirstName: v.FirstName(),
		LastName:  v.LastName(),
		Company:   v.Company(),
		ToSee:     v.ToSee(),
		VisitDate: v.VisitDate(),
		VisitTime: v.VisitTime(),
	}
}

// OfficeCreated is emitted after an office insert commits.
type OfficeCreated struct{ Office Office }

// EventType returns TypeOfficeCreated.
func (e OfficeCreated) EventType() Type { return TypeOfficeCreated }
func (e OfficeCreated) payload() any    { return e.Office }

// OfficeUpdated is emitted after an office update commits.
type OfficeUpdated struct{ Office Office }

// EventType returns TypeOfficeUpdated.
func (e OfficeUpdated) EventType() Type { return TypeOfficeUpdated }
func (e OfficeUpdated) payload() any    { return e.Office }

// OfficeDeleted is emitted after an office (and its visitors) is
// deleted. It carries the office as read immediately before deletion.
type OfficeDeleted struct{ Office Office }

// EventType returns TypeOfficeDeleted.
func (e OfficeDeleted) EventType() Type { return TypeOfficeDeleted }
func (e OfficeDeleted) payload() any    { return e.Office }

// VisitorCreated is emitted after a visitor check-in commits and the
// record has been indexed.
type VisitorCreated struct{ Visitor Visitor }

// EventType returns TypeVisitorCreated.
func (e VisitorCreated) EventType() Type { return TypeVisitorCreated }
func (e VisitorCreated) payload() any    { return e.Visitor }

// envelope is the self-describing wire frame: a discriminant plus the
// entity payload, so consumers dispatch without a schema registry.
type envelope struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

// Marshal encodes an event into its wire envelope.
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(envelope{Type: e.EventType(), Payload: e.payload()})
}
