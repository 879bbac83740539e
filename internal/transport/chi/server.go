package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/frontdesk/internal/domain"
	domvis "github.com/kailas-cloud/frontdesk/internal/domain/visitor"
	healthuc "github.com/kailas-cloud/frontdesk/internal/usecase/health"
	officeuc "github.com/kailas-cloud/frontdesk/internal/usecase/office"
	visitoruc "github.com/kailas-cloud/frontdesk/internal/usecase/visitor"
)

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeUnauthorized     = "unauthorized"
	codeValidationFailed = "validation_failed"
	codeOfficeNotFound   = "office_not_found"
	codeVisitorNotFound  = "visitor_not_found"
	codeOfficeExists     = "office_already_exists"
	codeNotCreator       = "not_creator"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the office and visitor services over HTTP.
type Server struct {
	offices       *officeuc.Service
	visitors      *visitoruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	offices *officeuc.Service,
	visitors *visitoruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		offices:  offices,
		visitors: visitors,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrOfficeNotFound, http.StatusNotFound, codeOfficeNotFound),
		sentinelHandler(domain.ErrVisitorNotFound, http.StatusNotFound, codeVisitorNotFound),
		sentinelHandler(domain.ErrOfficeExists, http.StatusConflict, codeOfficeExists),
		sentinelHandler(domain.ErrNotCreator, http.StatusForbidden, codeNotCreator),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes mounts the API onto a router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/offices", func(r chi.Router) {
			r.Get("/", s.ListOffices)
			r.Post("/", s.CreateOffice)
			r.Route("/{officeID}", func(r chi.Router) {
				r.Get("/", s.GetOffice)
				r.Post("/", s.CheckInVisitor)
				r.Patch("/", s.UpdateOffice)
				r.Delete("/", s.DeleteOffice)
				r.Get("/search", s.SearchVisitors)
			})
		})
		r.Post("/index/rebuild", s.RebuildIndex)
	})
	r.Get("/healthz", s.HealthCheck)
}

// ListOffices handles GET /v1/offices.
func (s *Server) ListOffices(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.offices.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]officeSummaryResponse, len(summaries))
	for i, sum := range summaries {
		items[i] = summaryToResponse(sum)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateOffice handles POST /v1/offices.
func (s *Server) CreateOffice(w http.ResponseWriter, r *http.Request) {
	var req createOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	o, err := s.offices.Create(r.Context(), req.Name, req.Addr, IdentityFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, officeToResponse(o))
}

// GetOffice handles GET /v1/offices/{officeID}. Optional start and end
// query parameters (YYYY-MM-DD, inclusive) narrow the visitor list to
// a date range.
func (s *Server) GetOffice(w http.ResponseWriter, r *http.Request) {
	officeID := chi.URLParam(r, "officeID")

	o, err := s.offices.Get(r.Context(), officeID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	var visitors []domvis.Visitor
	if startStr != "" || endStr != "" {
		start, end, perr := parseDateParams(startStr, endStr)
		if perr != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, perr.Error())
			return
		}
		visitors, err = s.visitors.SearchByDateRange(r.Context(), officeID, start, end)
	} else {
		visitors, err = s.visitors.ListAll(r.Context(), officeID)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, officeDetailResponse{
		officeResponse: officeToResponse(o),
		Visitors:       visitorsToResponse(visitors),
	})
}

// CheckInVisitor handles POST /v1/offices/{officeID}.
func (s *Server) CheckInVisitor(w http.ResponseWriter, r *http.Request) {
	officeID := chi.URLParam(r, "officeID")

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	v, err := s.visitors.Create(r.Context(), officeID, visitoruc.Fields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		ToSee:     req.ToSee,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, visitorToResponse(v))
}

// UpdateOffice handles PATCH /v1/offices/{officeID}.
func (s *Server) UpdateOffice(w http.ResponseWriter, r *http.Request) {
	officeID := chi.URLParam(r, "officeID")

	var req updateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	o, err := s.offices.Update(r.Context(), officeID, req.Name, req.Addr, IdentityFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, officeToResponse(o))
}

// DeleteOffice handles DELETE /v1/offices/{officeID}.
func (s *Server) DeleteOffice(w http.ResponseWriter, r *http.Request) {
	officeID := chi.URLParam(r, "officeID")

	if err := s.offices.Delete(r.Context(), officeID, IdentityFromContext(r.Context())); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchVisitors handles GET /v1/offices/{officeID}/search?q=&limit=.
func (s *Server) SearchVisitors(w http.ResponseWriter, r *http.Request) {
	officeID := chi.URLParam(r, "officeID")
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	visitors, err := s.visitors.Search(r.Context(), officeID, query, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query: query,
		Items: visitorsToResponse(visitors),
		Total: len(visitors),
	})
}

// RebuildIndex handles POST /v1/index/rebuild. Operational recovery
// hook: repopulates the prefix index from the store.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.visitors.Rebuild(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func parseDateParams(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" {
		startStr = endStr
	}
	if endStr == "" {
		endStr = startStr
	}
	start, err := time.Parse(domvis.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start must be a YYYY-MM-DD date")
	}
	end, err := time.Parse(domvis.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end must be a YYYY-MM-DD date")
	}
	return start, end, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrOfficeNotFound,
		domain.ErrVisitorNotFound,
		domain.ErrOfficeExists,
		domain.ErrNotCreator,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
