package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/darasabot/darasa/apps/bot/echo"
	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/chat"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
	dummydb "github.com/darasabot/darasa/storage/database/dummy"
)

const botToken = "test-bot-token"

var conf = &core.Config{
	AppName:     "Darasa",
	Env:         "TEST",
	TestMode:    true,
	BotAPIToken: botToken,
	OwnerID:     100,
}

type fixture struct {
	app       Server
	profRepo  profile.Repository
	classRepo classroom.Repository
	profSvc   *profile.Service
	classSvc  *classroom.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	f := &fixture{
		profRepo:  dummydb.NewProfileRepository(db),
		classRepo: dummydb.NewClassRepository(db),
	}
	f.profSvc = profile.NewService(f.profRepo, conf)
	f.classSvc = classroom.NewService(f.classRepo, f.profSvc, nil)

	engine := chat.NewEngine(f.profSvc, f.classSvc, conf, core.NopLogger{})
	f.app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         core.NopLogger{},
		Engine:         engine,
		DisableReqLogs: true,
	})
	return f
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newTokenRequest(path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Bot-Token", token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
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
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
