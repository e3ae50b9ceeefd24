package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/qisedu/udahili/apps/api/echo"
	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
	dummymail "github.com/qisedu/udahili/services/email/dummy"
	logsvc "github.com/qisedu/udahili/services/logger"
	dummydb "github.com/qisedu/udahili/storage/database/dummy"
)

var (
	aplRepo  *dummydb.ApplicantRepository
	appRepo  *dummydb.ApplicationRepository
	admRepo  *dummydb.AdminRepository
	mailSvc  *dummymail.Service
	resolver *admin.Resolver

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	// set up DB & repos
	db := dummydb.NewDB()
	aplRepo = dummydb.NewApplicantRepository(db)
	appRepo = dummydb.NewApplicationRepository(db)
	admRepo = dummydb.NewAdminRepository(db)

	// set up services
	mailSvc = dummymail.NewService(core.Conf)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	notifier := application.NewNotifier(core.Conf, mailSvc, logger)
	resolver = admin.NewResolver(core.Conf, admRepo, logger)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			ApplicantSvc:   applicant.NewService(core.Conf, aplRepo, logger),
			ApplicationSvc: application.NewService(appRepo, aplRepo, notifier, logger),
			AdminSvc:       admin.NewService(admRepo),
			Resolver:       resolver,
			Logger:         logger,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, p admin.Principal) string {
	claims := GetPrincipalClaims(p)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
