package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/qisedu/udahili/apps/api/echo"
	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/application"
	testutil "github.com/qisedu/udahili/tests"
)

func Test_adminApi_login(t *testing.T) {
	app := setup(t)
	_ = testutil.CreateAdmin(t, admRepo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)
	_ = testutil.CreateAdmin(t, admRepo, "John Rey", "rey@test.cd", admin.RoleAdmin, "Str0ng&Sauce", false)

	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "unknown email", body: marchallObj(t, LoginRequest{Email: "lol@test.cd", Password: "Str0ng&Sauce"}),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Email: "jane@test.cd", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "deactivated account", body: marchallObj(t, LoginRequest{Email: "rey@test.cd", Password: "Str0ng&Sauce"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/admin/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admin/login", []byte(`{}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("valid credentials", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admin/login",
			marchallObj(t, LoginRequest{Email: "Jane@Test.cd", Password: "Str0ng&Sauce"})) // email is cleaned
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling login response failed: %v", err)
		}
		if res.Token == "" {
			t.Error("token is empty")
		}
	})
}

func Test_adminApi_applications_auth(t *testing.T) {
	app := setup(t)
	reviewer := testutil.CreateAdmin(t, admRepo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)
	viewer := testutil.CreateAdmin(t, admRepo, "John Rey", "rey@test.cd", admin.RoleViewer, "Str0ng&Sauce", true)
	// a forged token claiming a reviewing role, with no record behind it
	ghost := admin.Principal{UserID: "ghost", Name: "Ghost", Email: "ghost@test.cd", Role: admin.RoleAdmin, IsActive: true}

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})
	empty := marchallList(t)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "viewer role denied on the claim", token: getToken(t, viewer), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "claimed role alone grants nothing", token: getToken(t, ghost), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "reviewer allowed", token: getToken(t, reviewer), wantCode: http.StatusOK, wantData: empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/admin/applications", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_adminApi_reviewFlow(t *testing.T) {
	app := setup(t)
	reviewer := testutil.CreateAdmin(t, admRepo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)
	token := getToken(t, reviewer)

	apl := testutil.CreateApplicant(t, aplRepo, "Amani", "Mwangi", "amani@test.cd", "QIS-2025-00042")
	first := testutil.CreateApplication(t, appRepo, apl.ID, "Grade 9", "Science", "2025-2026", application.StatusSubmitted)
	second := testutil.CreateApplication(t, appRepo, apl.ID, "Grade 9", "Arts", "2025-2026", application.StatusSubmitted)

	post := func(t *testing.T, path string, body ...[]byte) (*TransitionResponse, int) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, path, token, body...)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return nil, rec.Code
		}
		var tres TransitionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &tres); err != nil {
			t.Fatalf("unmarshalling transition response failed: %v", err)
		}
		return &tres, rec.Code
	}

	// review then approve the first application
	tres, code := post(t, "/v1/admin/applications/"+first.ID+"/review")
	if code != http.StatusOK {
		t.Fatalf("review code = %v; want %v", code, http.StatusOK)
	}
	if tres.Application.Status != application.StatusUnderReview {
		t.Errorf("status = %v, want %v", tres.Application.Status, application.StatusUnderReview)
	}
	if tres.EmailType != application.EmailTypeUnderReview || !tres.NotificationSent {
		t.Errorf("transition response = %+v, want sent %v", tres, application.EmailTypeUnderReview)
	}

	tres, code = post(t, "/v1/admin/applications/"+first.ID+"/approve")
	if code != http.StatusOK {
		t.Fatalf("approve code = %v; want %v", code, http.StatusOK)
	}
	if tres.Application.Status != application.StatusApproved {
		t.Errorf("status = %v, want %v", tres.Application.Status, application.StatusApproved)
	}

	// Approved is terminal
	if _, code = post(t, "/v1/admin/applications/"+first.ID+"/reject", marchallObj(t, RejectRequest{})); code != http.StatusConflict {
		t.Errorf("reject after approval code = %v; want %v", code, http.StatusConflict)
	}

	// reject the second application with a reason
	tres, code = post(t, "/v1/admin/applications/"+second.ID+"/reject", marchallObj(t, RejectRequest{Reason: "incomplete transcripts"}))
	if code != http.StatusOK {
		t.Fatalf("reject code = %v; want %v", code, http.StatusOK)
	}
	if tres.Application.Status != application.StatusRejected {
		t.Errorf("status = %v, want %v", tres.Application.Status, application.StatusRejected)
	}
	if tres.Application.RejectionReason.String != "incomplete transcripts" {
		t.Errorf("rejection reason = %q, want %q", tres.Application.RejectionReason.String, "incomplete transcripts")
	}

	// unknown application
	if _, code = post(t, "/v1/admin/applications/nope/review"); code != http.StatusNotFound {
		t.Errorf("review unknown code = %v; want %v", code, http.StatusNotFound)
	}

	// three transitions, each with an applicant email plus an internal ack
	if len(mailSvc.SentMessages) != 6 {
		t.Errorf("sent messages = %v, want 6", len(mailSvc.SentMessages))
	}
}

func Test_adminApi_tokenRefresh(t *testing.T) {
	app := setup(t)
	reviewer := testutil.CreateAdmin(t, admRepo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admin/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("valid token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/token-refresh", getToken(t, reviewer))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling login response failed: %v", err)
		}
		if res.Token == "" {
			t.Error("token is empty")
		}
	})

	t.Run("refresh window expired", func(t *testing.T) {
		oriat := time.Now().Add(-5 * time.Hour).Unix() // past the refresh delta
		token, err := GenerateToken(GetPrincipalClaims(reviewer, oriat))
		if err != nil {
			t.Fatalf("GenerateToken() failed: %v", err)
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/token-refresh", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		}, rec)
	})

	t.Run("principal gone", func(t *testing.T) {
		ghost := admin.Principal{UserID: "ghost", Name: "Ghost", Email: "ghost@test.cd", Role: admin.RoleAdmin, IsActive: true}
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/token-refresh", getToken(t, ghost))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		}, rec)
	})
}

func Test_adminApi_logout(t *testing.T) {
	app := setup(t)
	reviewer := testutil.CreateAdmin(t, admRepo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)

	req, rec := newRequest(http.MethodPost, "/v1/admin/logout")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/admin/logout", getToken(t, reviewer))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SuccessResponse{Success: "Signed out."}),
	}, rec)
}
