package visitor

import (
	"encoding/json"
	"fmt"

	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
)

// visitorDoc is the stored JSON shape of a visitor record. The ID is
// not embedded; it lives in the key and the membership sets.
type visitorDoc struct {
	OfficeID  string `json:"officeID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	ToSee     string `json:"toSee"`
	VisitDate string `json:"visitDate"`
	VisitTime string `json:"visitTime"`
}

func toDoc(v domvis.Visitor) visitorDoc {
	return visitorDoc{
		OfficeID:  v.OfficeID(),
		FirstName: v.FirstName(),
		LastName:  v.LastName(),
		Company:   v.Company(),
		ToSee:     v.ToSee(),
		VisitDate: v.VisitDate(),
		VisitTime: v.VisitTime(),
	}
}

// parseDoc decodes a JSON.GET "$" result, which is an array with the
// document at index 0.
func parseDoc(id string, raw []byte) (domvis.Visitor, error) {
	var docs []visitorDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domvis.Visitor{}, fmt.Errorf("unmarshal visitor %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domvis.Visitor{}, fmt.Errorf("unmarshal visitor %s: empty result", id)
	}
	d := docs[0]
	return domvis.Reconstruct(
		id, d.OfficeID, d.FirstName, d.LastName, d.Company, d.ToSee, d.VisitDate, d.VisitTime,
	), nil
}
