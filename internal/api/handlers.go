package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shiftpulse/shiftpulse/internal/middleware"
	"github.com/shiftpulse/shiftpulse/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": "ShiftPulse API"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		OrgName  string `json:"org_name"`
		Industry string `json:"industry"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := s.authSvc.Register(in.Email, in.Password, in.OrgName, in.Industry)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":           res.Token,
		"organization_id": res.OrganizationID,
		"admin_id":        res.AdminID,
		"role":            res.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := s.authSvc.Login(in.Email, in.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":           res.Token,
		"organization_id": res.OrganizationID,
		"admin_id":        res.AdminID,
		"role":            res.Role,
	})
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LocationID      string         `json:"location_id"`
		Answers         map[string]int `json:"answers"`
		ENPS            *int           `json:"enps"`
		TextGood        string         `json:"text_good"`
		TextImprove     string         `json:"text_improve"`
		TextOther       string         `json:"text_other"`
		Identity        string         `json:"identity"`
		IdentityConsent bool           `json:"identity_consent"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := s.ingest.SubmitResponse(services.SubmitResponseInput{
		LocationID:      in.LocationID,
		Answers:         in.Answers,
		ENPSRaw:         in.ENPS,
		TextGood:        in.TextGood,
		TextImprove:     in.TextImprove,
		TextOther:       in.TextOther,
		Identity:        in.Identity,
		IdentityConsent: in.IdentityConsent,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response_id": res.ResponseID})
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AdminIDFromContext(r.Context())
	locations, err := s.directory.ListAccessible(adminID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	type locationView struct {
		ID       string `json:"id"`
		ParentID string `json:"parent_id,omitempty"`
		Name     string `json:"name"`
		Active   bool   `json:"active"`
	}
	out := make([]locationView, 0, len(locations))
	for _, loc := range locations {
		out = append(out, locationView{ID: loc.ID, ParentID: loc.ParentID, Name: loc.Name, Active: loc.Active})
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": out})
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AdminIDFromContext(r.Context())
	var in struct {
		Name     string `json:"name"`
		ParentID string `json:"parent_id"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	loc, err := s.directory.CreateLocation(adminID, services.CreateLocationInput{Name: in.Name, ParentID: in.ParentID})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": loc.ID, "name": loc.Name, "parent_id": loc.ParentID})
}

func (s *Server) handleLocationReport(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AdminIDFromContext(r.Context())
	report, err := s.reports.LocationReport(adminID, chi.URLParam(r, "locationID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleOrganizationReport(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AdminIDFromContext(r.Context())
	report, err := s.reports.OrganizationReport(adminID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AdminIDFromContext(r.Context())
	var in struct {
		Reason      string `json:"reason"`
		RequestedBy string `json:"requested_by"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	plaintext, err := s.reveal.Reveal(chi.URLParam(r, "responseID"), in.Reason, in.RequestedBy, adminID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": plaintext})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service error codes onto HTTP statuses. The identity of
// integrity failures is surfaced distinctly so operators can tell tampering
// from authorization problems.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	if se, ok := services.AsServiceError(err); ok {
		msg = se.Message
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorEncryptionUnavailable:
			status = http.StatusServiceUnavailable
		case services.ErrorIntegrity:
			status = http.StatusConflict
		}
	} else {
		s.log.Error("request failed", zap.Error(err))
	}
	http.Error(w, msg, status)
}
