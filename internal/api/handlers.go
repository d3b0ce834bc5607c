package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"sjsage522/dealbite/internal/model"
	"sjsage522/dealbite/internal/store"
	apperrors "sjsage522/dealbite/pkg/errors"
)

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Market:     q.Get("market"),
		Restaurant: q.Get("restaurant"),
		Limit:      parseLimit(r, store.DefaultLimit),
	}

	items, err := s.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch deals: "+err.Error())
		return
	}
	// Return empty list if nil to be JSON friendly
	if items == nil {
		items = []model.ScoredDeal{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleBestDeal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.service.Best(r.Context(), q.Get("market"), q.Get("restaurant"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to rank deals: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type RefreshRequest struct {
	Restaurant string `json:"restaurant"`
	Market     string `json:"market"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req := RefreshRequest{
		Restaurant: r.URL.Query().Get("restaurant"),
		Market:     r.URL.Query().Get("market"),
	}
	if r.Body != nil && r.ContentLength != 0 {
		var body RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		// query parameters win over the body
		if req.Restaurant == "" {
			req.Restaurant = body.Restaurant
		}
		if req.Market == "" {
			req.Market = body.Market
		}
	}

	added, err := s.service.Refresh(r.Context(), req.Restaurant, req.Market)
	if err != nil {
		s.log.Warn().Err(err).
			Str("restaurant", req.Restaurant).
			Str("market", req.Market).
			Msg("Refresh failed")
		respondError(w, refreshStatus(err), "Refresh failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"added": added})
}

// refreshStatus maps a refresh error to the response status
func refreshStatus(err error) int {
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeValidation):
		return http.StatusBadRequest
	case apperrors.IsType(err, apperrors.ErrorTypeNetwork),
		apperrors.IsType(err, apperrors.ErrorTypeRateLimit),
		apperrors.IsType(err, apperrors.ErrorTypeParsing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseLimit(r *http.Request, defaultLimit int) int {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return limit
}
