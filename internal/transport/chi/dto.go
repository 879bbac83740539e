package chi

import (
	"github.com/kailas-cloud/frontdesk/internal/domain"
	domoff "github.com/kailas-cloud/frontdesk/internal/domain/office"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
	officeuc "github.com/kailas-cloud/frontdesk/internal/usecase/office"
)

type createOfficeRequest struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

type updateOfficeRequest struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

type checkInRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	ToSee     string `json:"toSee"`
}

type officeResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Addr    string          `json:"addr"`
	Creator domain.Identity `json:"creator"`
}

type officeSummaryResponse struct {
	officeResponse
	VisitorCount int `json:"visitorCount"`
}

type officeDetailResponse struct {
	officeResponse
	Visitors []visitorResponse `json:"visitors"`
}

type visitorResponse struct {
	ID        string `json:"id"`
	OfficeID  string `json:"officeID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	ToSee     string `json:"toSee"`
	VisitDate string `json:"visitDate"`
	VisitTime string `json:"visitTime"`
}

type searchResponse struct {
	Query string            `json:"query"`
	Items []visitorResponse `json:"items"`
	Total int               `json:"total"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func officeToResponse(o domoff.Office) officeResponse {
	return officeResponse{ID: o.ID(), Name: o.Name(), Addr: o.Addr(), Creator: o.Creator()}
}

func summaryToResponse(s officeuc.Summary) officeSummaryResponse {
	return officeSummaryResponse{
		officeResponse: officeToResponse(s.Office),
		VisitorCount:   s.VisitorCount,
	}
}

func visitorToResponse(v domvis.Visitor) visitorResponse {
	return visitorResponse{
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

func visitorsToResponse(vs []domvis.Visitor) []visitorResponse {
	items := make([]visitorResponse, len(vs))
	for i, v := range vs {
		items[i] = visitorToResponse(v)
	}
	return items
}
