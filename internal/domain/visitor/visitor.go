package visitor

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kailas-cloud/frontdesk/internal/domain"
)

// Date and time layouts used for visit timestamps. Both sort
// lexicographically in chronological order, which the repository
// relies on when ordering check-ins.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// MaxFieldLen bounds every caller-supplied attribute.
const MaxFieldLen = 256

// Visitor is a check-in record (immutable value object). Visitors are
// created once and never updated; the ID is assigned by the store on
// insert and stays empty until then.
type Visitor struct {
	id        string
	officeID  string
	firstName string
	lastName  string
	company   string
	toSee     string
	visitDate string
	visitTime string
}

// New validates and creates a Visitor checked in at the given moment.
// All four caller-supplied attributes are required; surrounding
// whitespace is trimmed before validation, so whitespace-only values
// are rejected too.
func New(officeID, firstName, lastName, company, toSee string, checkedIn time.Time) (Visitor, error) {
	firstName = trimmed(firstName)
	lastName = trimmed(lastName)
	company = trimmed(company)
	toSee = trimmed(toSee)

	err := validation.Errors{
		"officeID":  validation.Validate(officeID, validation.Required),
		"firstName": validation.Validate(firstName, validation.Required, validation.Length(1, MaxFieldLen)),
		"lastName":  validation.Validate(lastName, validation.Required, validation.Length(1, MaxFieldLen)),
		"company":   validation.Validate(company, validation.Required, validation.Length(1, MaxFieldLen)),
		"toSee":     validation.Validate(toSee, validation.Required, validation.Length(1, MaxFieldLen)),
	}.Filter()
	if err != nil {
		return Visitor{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	return Visitor{
		officeID:  officeID,
		firstName: firstName,
		lastName:  lastName,
		company:   company,
		toSee:     toSee,
		visitDate: checkedIn.Format(DateLayout),
		visitTime: checkedIn.Format(TimeLayout),
	}, nil
}

// Reconstruct creates a Visitor without validation (storage hydration).
func Reconstruct(id, officeID, firstName, lastName, company, toSee, visitDate, visitTime string) Visitor {
	return Visitor{
		id:        id,
		officeID:  officeID,
		firstName: firstName,
		lastName:  lastName,
		company:   company,
		toSee:     toSee,
		visitDate: visitDate,
		visitTime: visitTime,
	}
}

// WithID returns a copy with the store-assigned identifier set.
func (v Visitor) WithID(id string) Visitor {
	v.id = id
	return v
}

// ID returns the store-assigned record identifier.
func (v Visitor) ID() string { return v.id }

// OfficeID returns the owning office identifier.
func (v Visitor) OfficeID() string { return v.officeID }

// FirstName returns the visitor's first name.
func (v Visitor) FirstName() string { return v.firstName }

// LastName returns the visitor's last name.
func (v Visitor) LastName() string { return v.lastName }

// Company returns the visitor's company.
func (v Visitor) Company() string { return v.company }

// ToSee returns the host the visitor came to see.
func (v Visitor) ToSee() string { return v.toSee }

// VisitDate returns the check-in date in DateLayout.
func (v Visitor) VisitDate() string { return v.visitDate }

// VisitTime returns the check-in time in TimeLayout.
func (v Visitor) VisitTime() string { return v.visitTime }

// VisitedOn parses the visit date. Records hydrated from the store
// always carry a well-formed date; a zero time signals a malformed one.
func (v Visitor) VisitedOn() time.Time {
	t, err := time.Parse(DateLayout, v.visitDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func trimmed(s string) string { return strings.TrimSpace(s) }
