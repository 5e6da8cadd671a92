package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/measure"
	"github.com/Simplici0/cotizador/internal/pricing"
	"github.com/Simplici0/cotizador/internal/settings"
)

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// handleSettingsUpdate stores new defaults. The open workspace keeps its margin and
// policy; only the installation cost per piece reaches it immediately.
func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settings.Update(r.Context(), req); err != nil {
		if errors.Is(err, settings.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	saved, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	s.ws.mu.Lock()
	s.ws.installCostPerPiece = saved.InstallationCostPerPiece
	s.ws.mu.Unlock()

	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, measure.DefaultCatalog())
}

type workspaceResponse struct {
	ClientName       string          `json:"clientName"`
	Notes            string          `json:"notes"`
	MarginPercent    decimal.Decimal `json:"marginPercent"`
	Policy           pricing.Policy  `json:"policy"`
	ItemCount        int             `json:"itemCount"`
	FactoryCount     int             `json:"factoryCount"`
	MeasurementCount int             `json:"measurementCount"`
	LastNumber       string          `json:"lastNumber,omitempty"`
}

type workspaceRequest struct {
	ClientName    *string          `json:"clientName"`
	Notes         *string          `json:"notes"`
	MarginPercent *decimal.Decimal `json:"marginPercent"`
	Policy        *string          `json:"policy"`
}

func (s *server) workspaceView() workspaceResponse {
	return workspaceResponse{
		ClientName:       s.ws.clientName,
		Notes:            s.ws.notes,
		MarginPercent:    s.ws.margin,
		Policy:           s.ws.policy,
		ItemCount:        s.ws.items.Len(),
		FactoryCount:     len(s.ws.factory),
		MeasurementCount: s.ws.sheet.Len(),
		LastNumber:       s.ws.lastNumber,
	}
}

func (s *server) handleWorkspaceGet(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	resp := s.workspaceView()
	s.ws.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleWorkspaceUpdate changes client data, margin or policy. A new margin only
// applies to items added afterwards.
func (s *server) handleWorkspaceUpdate(w http.ResponseWriter, r *http.Request) {
	var req workspaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var policy pricing.Policy
	if req.Policy != nil {
		p, err := pricing.ParsePolicy(*req.Policy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		policy = p
	}
	if req.MarginPercent != nil && req.MarginPercent.IsNegative() {
		writeError(w, http.StatusBadRequest, "marginPercent must be >= 0")
		return
	}

	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	if req.ClientName != nil {
		s.ws.clientName = strings.TrimSpace(*req.ClientName)
	}
	if req.Notes != nil {
		s.ws.notes = strings.TrimSpace(*req.Notes)
	}
	if req.MarginPercent != nil {
		s.ws.margin = *req.MarginPercent
	}
	if policy != "" {
		s.ws.policy = policy
	}

	writeJSON(w, http.StatusOK, s.workspaceView())
}

func (s *server) handleWorkspaceReset(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	s.ws.reset(defaults)
	writeJSON(w, http.StatusOK, s.workspaceView())
}

func (s *server) handleMeasurementsList(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	rows := s.ws.sheet.All()
	total := s.ws.sheet.TotalArea()
	s.ws.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"measurements": rows,
		"totalArea":    total,
	})
}

func (s *server) handleMeasurementsCreate(w http.ResponseWriter, r *http.Request) {
	var req measure.Measurement
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.ws.mu.Lock()
	added, err := s.ws.sheet.Add(req)
	s.ws.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, added)
}

func (s *server) handleMeasurementsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.ws.mu.Lock()
	err := s.ws.sheet.Remove(id)
	s.ws.mu.Unlock()
	if err != nil {
		if errors.Is(err, measure.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove measurement")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
