package office

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
)

// officeDoc is the stored JSON shape of an office.
type officeDoc struct {
	Name    string          `json:"name"`
	Addr    string          `json:"addr"`
	Creator domain.Identity `json:"creator"`
}

func toDoc(o domoff.Office) officeDoc {
	return officeDoc{Name: o.Name(), Addr: o.Addr(), Creator: o.Creator()}
}

// parseDoc decodes a JSON.GET "$" result, which is an array with the
// document at index 0.
func parseDoc(id string, raw []byte) (domoff.Office, error) {
	var docs []officeDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domoff.Office{}, fmt.Errorf("unmarshal office %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domoff.Office{}, fmt.Errorf("unmarshal office %s: empty result", id)
	}
	d := docs[0]
	return domoff.Reconstruct(id, d.Name, d.Addr, d.Creator), nil
}
