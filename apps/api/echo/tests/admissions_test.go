package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/qisedu/udahili/apps/api/echo"
	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
	testutil "github.com/qisedu/udahili/tests"
)

func Test_admissionsApi_issueReference(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodPost, "/v1/references")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var apl applicant.Applicant
	if err := json.Unmarshal(rec.Body.Bytes(), &apl); err != nil {
		t.Fatalf("unmarshalling applicant failed: %v", err)
	}
	if !applicant.IsWellFormedRef(apl.Reference.String) {
		t.Errorf("reference = %v, not well-formed", apl.Reference.String)
	}
	// the placeholder row is committed before the code leaves the server
	if _, err := aplRepo.GetApplicantByRef(context.Background(), apl.Reference.String); err != nil {
		t.Errorf("GetApplicantByRef() failed: %v", err)
	}
}

func Test_admissionsApi_validateReference(t *testing.T) {
	app := setup(t)
	apl := testutil.CreateApplicant(t, aplRepo, "Amani", "Mwangi", "amani@test.cd", "QIS-2025-00042")

	refNotFound := marchallObj(t, httpErr{Error: "reference not found, please check it and try again"})
	known := marchallObj(t, applicant.ValidationResult{
		Valid:     true,
		Applicant: &applicant.Summary{ID: apl.ID, Name: "Amani Mwangi", Reference: "QIS-2025-00042"},
	})

	tests := []httpTest{
		{name: "malformed", path: "/v1/references/QIS-25-1", wantCode: http.StatusNotFound, wantData: refNotFound},
		{name: "well-formed but unknown", path: "/v1/references/QIS-1999-99999", wantCode: http.StatusNotFound, wantData: refNotFound},
		{name: "known", path: "/v1/references/QIS-2025-00042", wantCode: http.StatusOK, wantData: known},
		{name: "known, messy input", path: "/v1/references/qis-2025-00042", wantCode: http.StatusOK, wantData: known},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_admissionsApi_updateApplicantProfile(t *testing.T) {
	app := setup(t)
	apl := testutil.CreateApplicant(t, aplRepo, "", "", "", "QIS-2025-00042")

	// profile completion on the placeholder row
	body := marchallObj(t, applicant.UpdateProfile{
		FirstName: "Amani",
		LastName:  "Mwangi",
		Email:     "amani@test.cd",
		Phone:     "+243 990 000 000",
	})
	req, rec := newRequest(http.MethodPut, "/v1/applicants/"+apl.ID, body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated applicant.Applicant
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshalling applicant failed: %v", err)
	}
	if updated.DisplayName() != "Amani Mwangi" {
		t.Errorf("DisplayName() = %v, want Amani Mwangi", updated.DisplayName())
	}
	if updated.Reference.String != "QIS-2025-00042" {
		t.Errorf("reference changed to %v", updated.Reference.String)
	}

	// validation errors come back as a field map
	req, rec = newRequest(http.MethodPut, "/v1/applicants/"+apl.ID, []byte(`{"first_name":"A","last_name":"M","email":"lol"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	var fldErrs map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
		t.Fatalf("unmarshalling field errors failed: %v", err)
	}
	if _, ok := fldErrs["email"]; !ok {
		t.Errorf("field errors = %v, want an email entry", fldErrs)
	}

	// unknown applicant
	req, rec = newRequest(http.MethodPut, "/v1/applicants/nope", body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "applicant not found"}),
	}, rec)
}

func Test_admissionsApi_applications(t *testing.T) {
	app := setup(t)
	apl := testutil.CreateApplicant(t, aplRepo, "Amani", "Mwangi", "amani@test.cd", "QIS-2025-00042")

	// required fields
	req, rec := newRequest(http.MethodPost, "/v1/applications", []byte(`{}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	// unknown applicant
	body := marchallObj(t, application.NewApplication{ApplicantID: "nope", Grade: "Grade 9", Intake: "2025-2026"})
	req, rec = newRequest(http.MethodPost, "/v1/applications", body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "applicant not found"}),
	}, rec)

	// start
	body = marchallObj(t, application.NewApplication{
		ApplicantID: apl.ID,
		Grade:       "Grade 9",
		Stream:      "Science",
		Intake:      "2025-2026",
	})
	req, rec = newRequest(http.MethodPost, "/v1/applications", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var draft application.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &draft); err != nil {
		t.Fatalf("unmarshalling application failed: %v", err)
	}
	if draft.Status != application.StatusDraft {
		t.Errorf("status = %v, want %v", draft.Status, application.StatusDraft)
	}

	// retrieve
	req, rec = newRequest(http.MethodGet, "/v1/applications/"+draft.ID)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %v; want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	req, rec = newRequest(http.MethodGet, "/v1/applications/nope")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "application not found"}),
	}, rec)

	// query by applicant
	req, rec = newRequest(http.MethodGet, "/v1/applications?applicant_id="+apl.ID)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var apps []application.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &apps); err != nil {
		t.Fatalf("unmarshalling applications failed: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("applications = %v, want 1", len(apps))
	}

	// submit
	req, rec = newRequest(http.MethodPost, "/v1/applications/"+draft.ID+"/submit")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var tres TransitionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tres); err != nil {
		t.Fatalf("unmarshalling transition response failed: %v", err)
	}
	if tres.Application.Status != application.StatusSubmitted {
		t.Errorf("status = %v, want %v", tres.Application.Status, application.StatusSubmitted)
	}
	if tres.EmailType != application.EmailTypeSubmitted || !tres.NotificationSent {
		t.Errorf("transition response = %+v, want sent %v", tres, application.EmailTypeSubmitted)
	}
	if len(mailSvc.SentMessages) != 2 {
		t.Errorf("sent messages = %v, want 2", len(mailSvc.SentMessages))
	}

	// a second submission conflicts with the state machine
	req, rec = newRequest(http.MethodPost, "/v1/applications/"+draft.ID+"/submit")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: "invalid status transition"}),
	}, rec)
}
