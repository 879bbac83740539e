package visitor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/frontdesk/internal/domain"
)

var checkedIn = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestNew_Success(t *testing.T) {
	v, err := New("off-1", "Ada", "Lovelace", "Analytical Engines", "Charles", checkedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.ID() != "" {
		t.Errorf("expected empty id before insert, got %q", v.ID())
	}
	if v.OfficeID() != "off-1" {
		t.Errorf("expected officeID 'off-1', got %q", v.OfficeID())
	}
	if v.VisitDate() != "2026-03-14" {
		t.Errorf("expected visitDate '2026-03-14', got %q", v.VisitDate())
	}
	if v.VisitTime() != "09:26:53" {
		t.Errorf("expected visitTime '09:26:53', got %q", v.VisitTime())
	}
}

func TestNew_TrimsWhitespace(t *testing.T) {
	v, err := New("off-1", "  Ada ", "Lovelace\t", " Acme ", " Bob ", checkedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FirstName() != "Ada" {
		t.Errorf("expected trimmed first name, got %q", v.FirstName())
	}
	if v.Company() != "Acme" {
		t.Errorf("expected trimmed company, got %q", v.Company())
	}
}

func TestNew_RequiredFields(t *testing.T) {
	cases := []struct {
		name                                          string
		officeID, firstName, lastName, company, toSee string
	}{
		{"missing officeID", "", "Ada", "Lovelace", "Acme", "Bob"},
		{"missing firstName", "off-1", "", "Lovelace", "Acme", "Bob"},
		{"whitespace firstName", "off-1", "   ", "Lovelace", "Acme", "Bob"},
		{"missing lastName", "off-1", "Ada", "", "Acme", "Bob"},
		{"missing company", "off-1", "Ada", "Lovelace", "", "Bob"},
		{"missing toSee", "off-1", "Ada", "Lovelace", "Acme", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.officeID, tc.firstName, tc.lastName, tc.company, tc.toSee, checkedIn)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNew_FieldTooLong(t *testing.T) {
	long := strings.Repeat("x", MaxFieldLen+1)
	_, err := New("off-1", long, "Lovelace", "Acme", "Bob", checkedIn)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestWithID(t *testing.T) {
	v, err := New("off-1", "Ada", "Lovelace", "Acme", "Bob", checkedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := v.WithID("vis-42")
	if saved.ID() != "vis-42" {
		t.Errorf("expected id 'vis-42', got %q", saved.ID())
	}
	if v.ID() != "" {
		t.Error("WithID must not mutate the receiver")
	}
}

func TestVisitedOn(t *testing.T) {
	v := Reconstruct("vis-1", "off-1", "Ada", "Lovelace", "Acme", "Bob", "2026-03-14", "09:26:53")
	got := v.VisitedOn()
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	malformed := Reconstruct("vis-2", "off-1", "Ada", "Lovelace", "Acme", "Bob", "14/03/2026", "")
	if !malformed.VisitedOn().IsZero() {
		t.Error("expected zero time for malformed date")
	}
}

func TestDateLayout_SortsChronologically(t *testing.T) {
	// The repository orders check-ins by comparing formatted strings.
	earlier := time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)
	later := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	a := earlier.Format(DateLayout) + " " + earlier.Format(TimeLayout)
	b := later.Format(DateLayout) + " " + later.Format(TimeLayout)
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}
}
