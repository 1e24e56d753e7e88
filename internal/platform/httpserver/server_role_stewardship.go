package httpserver

import (
	"encoding/json"
	"net/http"

	httptransport "stewardship/contexts/group-governance/role-stewardship/transport/http"
)

const stewardshipPrefix = "/api/stewardship/v1"

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) registerStewardshipRoutes() {
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/groups", s.authenticated(s.handleRegisterGroup))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/groups/{group_id}/leaderless", s.authenticated(s.handleConvertToLeaderless))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/groups/{group_id}/members", s.authenticated(s.handleAddMember))
	s.mux.HandleFunc("DELETE "+stewardshipPrefix+"/groups/{group_id}/members/{user_id}", s.authenticated(s.handleRemoveMember))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/groups/{group_id}/roles", s.authenticated(s.handleDefineRole))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/groups/{group_id}/recalculate", s.authenticated(s.handleRecalculateGroup))
	s.mux.HandleFunc("GET "+stewardshipPrefix+"/groups/{group_id}/users/{user_id}/responsibilities", s.authenticated(s.handleListResponsibilities))
	s.mux.HandleFunc("GET "+stewardshipPrefix+"/groups/{group_id}/users/{user_id}/responsibilities/{responsibility}", s.authenticated(s.handleHasResponsibility))

	s.mux.HandleFunc("PATCH "+stewardshipPrefix+"/roles/{role_id}", s.authenticated(s.handleConfigureRole))
	s.mux.HandleFunc("GET "+stewardshipPrefix+"/roles/{role_id}/trust", s.authenticated(s.handleTrustData))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/roles/{role_id}/candidacy", s.authenticated(s.handleDeclareCandidacy))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/roles/{role_id}/nominations", s.authenticated(s.handleNominateCandidate))
	s.mux.HandleFunc("PUT "+stewardshipPrefix+"/roles/{role_id}/trust/{trustee_id}", s.authenticated(s.handleExpressTrust))
	s.mux.HandleFunc("DELETE "+stewardshipPrefix+"/roles/{role_id}/trust/{trustee_id}", s.authenticated(s.handleRetractTrust))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/roles/{role_id}/resign", s.authenticated(s.handleResign))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/roles/{role_id}/bootstrap", s.authenticated(s.handleSeedBootstrap))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/roles/{role_id}/holders", s.authenticated(s.handleAssignHolder))
	s.mux.HandleFunc("DELETE "+stewardshipPrefix+"/roles/{role_id}/holders/{user_id}", s.authenticated(s.handleUnassignHolder))
	s.mux.HandleFunc("POST "+stewardshipPrefix+"/roles/{role_id}/recalculate", s.authenticated(s.handleRecalculateRole))
}

func (s *Server) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.auth.Subject(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		next(w, r, userID)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func (s *Server) handleRegisterGroup(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.RegisterGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.RegisterGroupHandler(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.AddMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.AddMemberHandler(r.Context(), r.PathValue("group_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.stewardship.Handler.RemoveMemberHandler(r.Context(), r.PathValue("group_id"), userID, r.PathValue("user_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConvertToLeaderless(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.ConvertToLeaderlessRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.ConvertToLeaderlessHandler(r.Context(), r.PathValue("group_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDefineRole(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.DefineRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.DefineRoleHandler(r.Context(), r.PathValue("group_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRecalculateGroup(w http.ResponseWriter, r *http.Request, _ string) {
	resp, err := s.stewardship.Handler.RecalculateGroupHandler(r.Context(), r.PathValue("group_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResponsibilities(w http.ResponseWriter, r *http.Request, _ string) {
	resp, err := s.stewardship.Handler.ListResponsibilitiesHandler(r.Context(), r.PathValue("group_id"), r.PathValue("user_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasResponsibility(w http.ResponseWriter, r *http.Request, _ string) {
	resp, err := s.stewardship.Handler.HasResponsibilityHandler(
		r.Context(),
		r.PathValue("group_id"),
		r.PathValue("user_id"),
		r.PathValue("responsibility"),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfigureRole(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.ConfigureRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.ConfigureRoleHandler(r.Context(), r.PathValue("role_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrustData(w http.ResponseWriter, r *http.Request, userID string) {
	resp, err := s.stewardship.Handler.TrustDataHandler(r.Context(), r.PathValue("role_id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeclareCandidacy(w http.ResponseWriter, r *http.Request, userID string) {
	resp, err := s.stewardship.Handler.DeclareCandidacyHandler(r.Context(), r.PathValue("role_id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNominateCandidate(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.UserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.NominateCandidateHandler(r.Context(), r.PathValue("role_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExpressTrust(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.ExpressTrustRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.ExpressTrustHandler(r.Context(), r.PathValue("role_id"), userID, r.PathValue("trustee_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetractTrust(w http.ResponseWriter, r *http.Request, userID string) {
	resp, err := s.stewardship.Handler.RetractTrustHandler(r.Context(), r.PathValue("role_id"), userID, r.PathValue("trustee_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResign(w http.ResponseWriter, r *http.Request, userID string) {
	resp, err := s.stewardship.Handler.ResignHandler(r.Context(), r.PathValue("role_id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeedBootstrap(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.UserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.SeedBootstrapHandler(r.Context(), r.PathValue("role_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignHolder(w http.ResponseWriter, r *http.Request, userID string) {
	var req httptransport.UserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.stewardship.Handler.AssignHolderHandler(r.Context(), r.PathValue("role_id"), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnassignHolder(w http.ResponseWriter, r *http.Request, userID string) {
	resp, err := s.stewardship.Handler.UnassignHolderHandler(r.Context(), r.PathValue("role_id"), userID, r.PathValue("user_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecalculateRole(w http.ResponseWriter, r *http.Request, _ string) {
	resp, err := s.stewardship.Handler.RecalculateRoleHandler(r.Context(), r.PathValue("role_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
