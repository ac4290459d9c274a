package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/auth"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/request"
	"github.com/wolfeidau/gasdesk/internal/tenant"
)

func (s *Server) registerIndividual(w http.ResponseWriter, r *http.Request) {
	var body IndividualRegistration
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	key, err := s.cfg.Tenants.Register(r.Context(), tenant.Registration{
		Kind:   models.KindIndividual,
		Key:    body.NIC,
		Name:   body.Name,
		Phone:  body.PhoneNumber,
		Email:  body.Email,
		Secret: body.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.issueSession(w, r, http.StatusCreated, models.Session{Kind: models.KindIndividual, Key: key})
}

func (s *Server) registerOrganization(w http.ResponseWriter, r *http.Request) {
	var body OrganizationRegistration
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	key, err := s.cfg.Tenants.Register(r.Context(), tenant.Registration{
		Kind:            models.KindOrganization,
		Key:             body.BusiRegNo,
		Name:            body.OrgName,
		Phone:           body.OrgPhoneNumber,
		Email:           body.Email,
		Secret:          body.Password,
		Address:         body.Address,
		ValidationImage: body.ValidationImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.issueSession(w, r, http.StatusCreated, models.Session{Kind: models.KindOrganization, Key: key})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	kind, err := models.ParseTenantKind(body.Kind)
	if err != nil {
		writeError(w, r, apperr.Field(apperr.ErrValidation, "kind", err.Error()))
		return
	}

	key, err := s.cfg.Tenants.Login(r.Context(), kind, body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.issueSession(w, r, http.StatusOK, models.Session{Kind: kind, Key: key})
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, status int, session models.Session) {
	token, expires, err := s.cfg.Sessions.Issue(session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("kind", string(session.Kind)).
		Str("key", session.Key).
		Msg("Issued session")

	writeJSON(w, r, status, SessionResponse{
		Token:     token,
		ExpiresAt: expires.Unix(),
		Kind:      string(session.Kind),
		Key:       session.Key,
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	session := sessionOf(r)

	t, ok, err := s.cfg.Tenants.Lookup(r.Context(), session.Kind, session.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.ErrTenantNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, newProfile(t))
}

func (s *Server) listOutlets(w http.ResponseWriter, r *http.Request) {
	resp := OutletList{Outlets: []Outlet{}}
	for o, err := range s.cfg.Outlets.SearchByName(r.Context(), r.URL.Query().Get("q")) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Outlets = append(resp.Outlets, newOutlet(o))
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	var body RequestForm
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	req, err := s.cfg.Requests.Submit(r.Context(), sessionOf(r), request.Form{
		Outlet:        body.Outlet,
		CylinderType:  body.CylinderType,
		CylinderCount: body.CylinderCount,
		RequestDate:   body.RequestDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, newRequest(req))
}

func (s *Server) currentRequest(w http.ResponseWriter, r *http.Request) {
	req, ok, err := s.cfg.Requests.Current(r.Context(), sessionOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var resp CurrentRequest
	if ok {
		resp.Request = newRequest(req)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) activeToken(w http.ResponseWriter, r *http.Request) {
	session := sessionOf(r)
	if session.Kind != models.KindOrganization {
		writeError(w, r, fmt.Errorf("%w: active tokens are issued to organizations only", apperr.ErrForbidden))
		return
	}

	t, ok, err := s.cfg.Tokens.ActiveToken(r.Context(), session.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, r, http.StatusOK, ActiveToken{})
		return
	}

	writeJSON(w, r, http.StatusOK, newActiveToken(t))
}

func (s *Server) completedTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.cfg.Tokens.CompletedOrders(r.Context(), sessionOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := TokenList{Tokens: make([]*Token, 0, len(tokens))}
	for _, t := range tokens {
		resp.Tokens = append(resp.Tokens, newToken(t))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// sessionOf returns the session RequireSession put on the context.
func sessionOf(r *http.Request) models.Session {
	session, _ := auth.SessionFromContext(r.Context())
	return session
}
