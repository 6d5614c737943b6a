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
	"time"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/course"
	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	logsvc "github.com/trezcool/kazi/services/logger"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
)

var (
	conf = &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Kazi",
		SecretKey: "!s3cretkey!",
		Server: core.ServerConfig{
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	errMissingToken = errEnvelope(http.StatusUnauthorized, "missing or malformed jwt")
	errForbidden    = errEnvelope(http.StatusForbidden, "permission denied")
)

type testApp struct {
	app     Server
	usrRepo user.Repository
	crsRepo course.Repository
	grpRepo group.Repository
	tskRepo task.Repository
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	grpRepo := dummydb.NewGroupRepository(db)
	tskRepo := dummydb.NewTaskRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	grpSvc := group.NewService(grpRepo)

	// set up server
	app := NewServer(
		&Options{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        user.NewService(usrRepo, mailSvc, conf),
			CourseSvc:      course.NewService(crsRepo),
			GroupSvc:       grpSvc,
			TaskSvc:        task.NewService(tskRepo, grpSvc),
		},
	)
	return &testApp{app: app, usrRepo: usrRepo, crsRepo: crsRepo, grpRepo: grpRepo, tskRepo: tskRepo}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
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

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr, conf)
	token, err := GenerateToken(claims, conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func envelope(t *testing.T, status int, message string, data interface{}) []byte {
	return marchallObj(t, Envelope{Status: status, Message: message, Data: data})
}

func errEnvelope(status int, message string) []byte {
	data, _ := json.Marshal(Envelope{Status: status, Message: message})
	return data
}

// decodeData unmarshals the response envelope and, when dst is provided,
// its data payload into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) Envelope {
	t.Helper()

	var env struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decodeData(): %v; body %s", err, rec.Body.String())
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decodeData(): %v; data %s", err, string(env.Data))
		}
	}
	return Envelope{Status: env.Status, Message: env.Message}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
