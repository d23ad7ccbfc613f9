// Package chi exposes the retrieval core over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/domain"
	embedjobuc "github.com/lotscout/lotscout/internal/usecase/embedjob"
	healthuc "github.com/lotscout/lotscout/internal/usecase/health"
	prefsuc "github.com/lotscout/lotscout/internal/usecase/prefs"
	scoreboarduc "github.com/lotscout/lotscout/internal/usecase/scoreboard"
	searchuc "github.com/lotscout/lotscout/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// VehicleIngestor stores scraped listings.
type VehicleIngestor interface {
	Upsert(ctx context.Context, v *domain.Vehicle) (string, bool, error)
}

// Server holds the HTTP handlers for the retrieval API.
type Server struct {
	search        *searchuc.Service
	scoreboard    *scoreboarduc.Service
	prefs         *prefsuc.Service
	embedjob      *embedjobuc.Service
	health        *healthuc.Service
	catalog       VehicleIngestor
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	scoreboard *scoreboarduc.Service,
	prefs *prefsuc.Service,
	embedjob *embedjobuc.Service,
	health *healthuc.Service,
	catalog VehicleIngestor,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:     search,
		scoreboard: scoreboard,
		prefs:      prefs,
		embedjob:   embedjob,
		health:     health,
		catalog:    catalog,
		logger:     logger,
	}
	// Ordered: ErrRetrievalFailed wraps store errors, so it must match first.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrVehicleNotFound, http.StatusNotFound, codeVehicleNotFound),
		sentinelHandler(domain.ErrInterestNotFound, http.StatusNotFound, codeInterestNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrMatcherUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes mounts every handler on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Get("/scoreboard", s.Scoreboard)

		r.Post("/interests", s.CreateInterest)
		r.Get("/interests", s.ListInterests)
		r.Delete("/interests/{id}", s.DeleteInterest)

		r.Post("/favorites/toggle", s.ToggleFavorite)
		r.Get("/favorites", s.ListFavorites)

		r.Post("/vehicles", s.IngestVehicle)
		r.Post("/vehicles/{id}/hide", s.HideVehicle)

		r.Post("/admin/embedding-batch", s.RunEmbeddingBatch)
	})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// Query and criteria are both optional: an empty request browses the
	// catalog newest-first.
	out, err := s.search.Search(r.Context(), searchuc.Request{
		UserID:   req.UserID,
		Query:    req.Query,
		Criteria: req.Criteria,
		Limit:    req.Limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Items: matchesToDTO(out.Matches),
		Path:  string(out.Path),
		Total: len(out.Matches),
	})
}

// Scoreboard handles GET /api/v1/scoreboard.
func (s *Server) Scoreboard(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}

	board, err := s.scoreboard.Build(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := make(map[string][]MatchResponse, len(board))
	for name, matches := range board {
		resp[name] = matchesToDTO(matches)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateInterest handles POST /api/v1/interests.
func (s *Server) CreateInterest(w http.ResponseWriter, r *http.Request) {
	var req InterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id and name are required")
		return
	}

	created, err := s.scoreboard.CreateInterest(r.Context(), domain.Interest{
		UserID:    req.UserID,
		Name:      req.Name,
		Criteria:  req.Criteria,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, interestToDTO(&created))
}

// ListInterests handles GET /api/v1/interests.
func (s *Server) ListInterests(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}

	profiles, err := s.scoreboard.ListInterests(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]InterestResponse, len(profiles))
	for i := range profiles {
		items[i] = interestToDTO(&profiles[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// DeleteInterest handles DELETE /api/v1/interests/{id}.
func (s *Server) DeleteInterest(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}

	if err := s.scoreboard.DeleteInterest(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /api/v1/favorites/toggle.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req ToggleFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" || req.VehicleID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id and vehicle_id are required")
		return
	}

	favorite, err := s.prefs.ToggleFavorite(r.Context(), req.UserID, req.VehicleID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleFavoriteResponse{
		VehicleID: req.VehicleID,
		Favorite:  favorite,
	})
}

// ListFavorites handles GET /api/v1/favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}

	vehicles, err := s.prefs.ListFavorites(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]VehicleResponse, len(vehicles))
	for i := range vehicles {
		items[i] = vehicleToDTO(&vehicles[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// IngestVehicle handles POST /api/v1/vehicles.
func (s *Server) IngestVehicle(w http.ResponseWriter, r *http.Request) {
	var req IngestVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.MarketplaceURL == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "marketplace_url and title are required")
		return
	}

	v := domain.Vehicle{
		Title:          req.Title,
		Price:          req.Price,
		Mileage:        req.Mileage,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		MarketplaceURL: req.MarketplaceURL,
		Source:         req.Source,
		Make:           req.Make,
		Model:          req.Model,
		BodyType:       req.BodyType,
		Year:           req.Year,
		PostedAt:       time.Now().UTC(),
	}
	if req.PostedAt != "" {
		posted, err := time.Parse(time.RFC3339, req.PostedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "posted_at must be RFC 3339")
			return
		}
		v.PostedAt = posted.UTC()
	}

	id, created, err := s.catalog.Upsert(r.Context(), &v)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, IngestVehicleResponse{ID: id, Created: created})
}

// HideVehicle handles POST /api/v1/vehicles/{id}/hide.
func (s *Server) HideVehicle(w http.ResponseWriter, r *http.Request) {
	var req HideVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}

	if err := s.prefs.HideVehicle(r.Context(), req.UserID, chi.URLParam(r, "id"), req.Reason); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunEmbeddingBatch handles POST /api/v1/admin/embedding-batch.
func (s *Server) RunEmbeddingBatch(w http.ResponseWriter, r *http.Request) {
	res, err := s.embedjob.RunBatch(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EmbeddingBatchResponse{
		Embedded: res.Embedded,
		Failed:   res.Failed,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRetrievalFailed,
		domain.ErrVehicleNotFound,
		domain.ErrInterestNotFound,
		domain.ErrNotFound,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingUnavailable,
		domain.ErrCatalogUnavailable,
		domain.ErrMatcherUnavailable,
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
