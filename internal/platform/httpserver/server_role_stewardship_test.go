package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	rolestewardship "stewardship/contexts/group-governance/role-stewardship"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	httptransport "stewardship/contexts/group-governance/role-stewardship/transport/http"
)

type testServer struct {
	t      *testing.T
	module rolestewardship.Module
	server *Server
}

func newTestServer(t *testing.T, auth Authenticator) *testServer {
	t.Helper()
	registry := prometheus.NewRegistry()
	module := rolestewardship.NewInMemoryModule(nil, nil)
	return &testServer{
		t:      t,
		module: module,
		server: New(module, auth, registry, nil, ""),
	}
}

func (ts *testServer) do(method string, path string, userID string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (ts *testServer) seedLeaderlessRole(members ...string) (string, string) {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/stewardship/v1/groups", "admin", httptransport.RegisterGroupRequest{
		Name: "bike co-op",
		Mode: string(entities.GroupModeLeaderless),
	})
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("register group: %d %s", rec.Code, rec.Body.String())
	}
	group := decode[httptransport.GroupResponse](ts.t, rec)

	joined := time.Now().Add(-48 * time.Hour)
	for _, member := range members {
		rec := ts.do(http.MethodPost, "/api/stewardship/v1/groups/"+group.GroupID+"/members", "admin", httptransport.AddMemberRequest{
			UserID:   member,
			JoinedAt: &joined,
		})
		if rec.Code != http.StatusCreated {
			ts.t.Fatalf("add member %s: %d %s", member, rec.Code, rec.Body.String())
		}
	}

	rec = ts.do(http.MethodPost, "/api/stewardship/v1/groups/"+group.GroupID+"/roles", "admin", httptransport.DefineRoleRequest{
		Name:              "mechanic",
		Responsibilities:  []string{"Repairs"},
		Assignment:        string(entities.AssignmentTrustActivated),
		ThresholdRequired: 75,
		Capacity:          1,
	})
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("define role: %d %s", rec.Code, rec.Body.String())
	}
	role := decode[httptransport.RoleResponse](ts.t, rec)
	return group.GroupID, role.RoleID
}

func weight(v int) *int { return &v }

func TestStewardshipTrustFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, Authenticator{})
	groupID, roleID := ts.seedLeaderlessRole("ana", "ben", "cy")
	base := "/api/stewardship/v1/roles/" + roleID

	if rec := ts.do(http.MethodPost, base+"/candidacy", "ana", nil); rec.Code != http.StatusOK {
		t.Fatalf("declare: %d %s", rec.Code, rec.Body.String())
	}

	rec := ts.do(http.MethodPut, base+"/trust/ana", "ben", httptransport.ExpressTrustRequest{Weight: weight(80)})
	if rec.Code != http.StatusOK {
		t.Fatalf("express ben: %d %s", rec.Code, rec.Body.String())
	}
	outcome := decode[httptransport.RoleOutcomeResponse](t, rec)
	if outcome.Status != "active" || len(outcome.Holders) != 1 || outcome.Holders[0] != "ana" {
		t.Fatalf("expected ana active, got %+v", outcome)
	}

	rec = ts.do(http.MethodGet, "/api/stewardship/v1/groups/"+groupID+"/users/ana/responsibilities/repairs", "cy", nil)
	if rec.Code != http.StatusOK || !decode[httptransport.HasResponsibilityResponse](t, rec).Allowed {
		t.Fatalf("expected ana to hold Repairs: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodGet, base+"/trust", "ben", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trust data: %d %s", rec.Code, rec.Body.String())
	}
	data := decode[httptransport.TrustDataResponse](t, rec)
	if len(data.MyTrustExpressions) != 1 || data.MyTrustExpressions[0].Weight != 80 {
		t.Fatalf("expected ben's own expression, got %+v", data.MyTrustExpressions)
	}

	rec = ts.do(http.MethodDelete, base+"/trust/ana", "ben", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("retract: %d %s", rec.Code, rec.Body.String())
	}
	if outcome := decode[httptransport.RoleOutcomeResponse](t, rec); outcome.Status != "vacant" || len(outcome.Holders) != 0 {
		t.Fatalf("expected vacant role after retraction, got %+v", outcome)
	}
}

func TestGroupFounderManagesMembersOverHTTP(t *testing.T) {
	ts := newTestServer(t, Authenticator{})
	rec := ts.do(http.MethodPost, "/api/stewardship/v1/groups", "founder", httptransport.RegisterGroupRequest{
		GroupID: "g1",
		Name:    "tool library",
		Mode:    string(entities.GroupModeLeaderless),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register group: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/stewardship/v1/groups/g1/roles", "founder", httptransport.DefineRoleRequest{
		Name:       "lender",
		Assignment: string(entities.AssignmentTrustActivated),
		Capacity:   1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected the founder to define roles, got %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/stewardship/v1/groups/g1/members", "founder", httptransport.AddMemberRequest{UserID: "dee"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member: %d %s", rec.Code, rec.Body.String())
	}
	if member := decode[httptransport.MemberResponse](t, rec); member.UserID != "dee" || member.IsAdmin {
		t.Fatalf("unexpected member: %+v", member)
	}

	rec = ts.do(http.MethodPost, "/api/stewardship/v1/groups/g1/members", "dee", httptransport.AddMemberRequest{UserID: "eve"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected non-admin add to be forbidden, got %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodDelete, "/api/stewardship/v1/groups/g1/members/dee", "dee", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("self removal: %d %s", rec.Code, rec.Body.String())
	}
	if _, ok, _ := ts.module.Store.GetMembership(context.Background(), "g1", "dee"); ok {
		t.Fatalf("expected dee removed from the directory")
	}
}

func TestNominationOverHTTP(t *testing.T) {
	ts := newTestServer(t, Authenticator{})
	_, roleID := ts.seedLeaderlessRole("ana", "ben")
	base := "/api/stewardship/v1/roles/" + roleID

	rec := ts.do(http.MethodPost, base+"/nominations", "ben", httptransport.UserRequest{UserID: "ana"})
	if rec.Code != http.StatusOK {
		t.Fatalf("nominate: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodGet, base+"/trust", "ben", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trust data: %d %s", rec.Code, rec.Body.String())
	}
	data := decode[httptransport.TrustDataResponse](t, rec)
	found := false
	for _, candidate := range data.Candidates {
		if candidate.UserID == "ana" {
			found = candidate.Declared && candidate.NominatedBy == "ben"
		}
	}
	if !found {
		t.Fatalf("expected ana listed as nominated by ben, got %+v", data.Candidates)
	}

	rec = ts.do(http.MethodPost, base+"/nominations", "ben", httptransport.UserRequest{UserID: "stranger"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected non-member nominee to be rejected, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestStewardshipRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t, Authenticator{})
	_, roleID := ts.seedLeaderlessRole("ana", "ben")
	base := "/api/stewardship/v1/roles/" + roleID

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		status int
		code   string
	}{
		{name: "missing user", method: http.MethodPost, path: base + "/candidacy", status: http.StatusUnauthorized, code: "unauthenticated"},
		{name: "missing weight", method: http.MethodPut, path: base + "/trust/ana", user: "ben", body: map[string]any{}, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "weight out of range", method: http.MethodPut, path: base + "/trust/ana", user: "ben", body: httptransport.ExpressTrustRequest{Weight: weight(101)}, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "self trust", method: http.MethodPut, path: base + "/trust/ben", user: "ben", body: httptransport.ExpressTrustRequest{Weight: weight(50)}, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "not a candidate", method: http.MethodPut, path: base + "/trust/ana", user: "ben", body: httptransport.ExpressTrustRequest{Weight: weight(50)}, status: http.StatusUnprocessableEntity, code: "not_a_candidate"},
		{name: "not a member", method: http.MethodPost, path: base + "/candidacy", user: "stranger", status: http.StatusForbidden, code: "not_a_member"},
		{name: "unknown role", method: http.MethodPost, path: "/api/stewardship/v1/roles/missing/candidacy", user: "ana", status: http.StatusNotFound, code: "role_not_found"},
		{name: "non admin configure", method: http.MethodPatch, path: base, user: "ana", body: httptransport.ConfigureRoleRequest{ThresholdRequired: 60, Capacity: 1}, status: http.StatusForbidden, code: "forbidden"},
		{name: "admin assign on trust role", method: http.MethodPost, path: base + "/holders", user: "admin", body: httptransport.UserRequest{UserID: "ana"}, status: http.StatusUnprocessableEntity, code: "role_not_admin_assigned"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(tc.method, tc.path, tc.user, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if got := decode[httptransport.ErrorResponse](t, rec); got.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, got.Code)
			}
		})
	}
}

func TestWriteDomainErrorMarksBusyAsRetryable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, domainerrors.ErrRoleBusy)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if body := decode[httptransport.ErrorResponse](t, rec); !body.Retryable {
		t.Fatalf("expected retryable flag, got %+v", body)
	}

	rec = httptest.NewRecorder()
	writeDomainError(rec, domainerrors.ErrTrustRateLimited)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestBearerTokenSubject(t *testing.T) {
	secret := []byte("test-secret")
	ts := newTestServer(t, Authenticator{Secret: secret})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	raw, _ := json.Marshal(httptransport.RegisterGroupRequest{Name: "choir"})
	req := httptest.NewRequest(http.MethodPost, "/api/stewardship/v1/groups", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with bearer token, got %d: %s", rec.Code, rec.Body.String())
	}

	// A header identity is ignored once a secret is configured.
	if rec := ts.do(http.MethodPost, "/api/stewardship/v1/groups", "admin", httptransport.RegisterGroupRequest{Name: "choir"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "admin"}).SignedString([]byte("other"))
	req = httptest.NewRequest(http.MethodPost, "/api/stewardship/v1/groups", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	ts := newTestServer(t, Authenticator{})
	if rec := ts.do(http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/swagger/doc.json", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("swagger doc: %d", rec.Code)
	}
}
