package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	englocale "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/core/space"
	dummydb "github.com/shule-edu/shule/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

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
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// testNotifier records credential passwords by email so tests can log in as
// freshly provisioned accounts.
type testNotifier struct {
	deliver  bool
	creds    map[string]string
	assigned []string // recipient emails
}

func (n *testNotifier) SendCredentials(to mail.Address, givenName, email, password string, role account.Role) bool {
	n.creds[email] = password
	return n.deliver
}

func (n *testNotifier) SendWorkAssigned(to mail.Address, givenName, title, subject, instructor string, dueAt time.Time, description string) bool {
	n.assigned = append(n.assigned, to.Address)
	return n.deliver
}

type testServer struct {
	srv       *Server
	accounts  *account.Service
	academics *academic.Service
	spaces    *space.Service
	notifier  *testNotifier
	director  account.Account
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Shule",
		SecretKey: []byte("secret"),
		Director:  core.DirectorConfig{Email: "director@shule.local", Password: "admin123"},
		Server:    core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
	}
	notifier := &testNotifier{deliver: true, creds: make(map[string]string)}
	academicSvc := academic.NewService(dummydb.NewAcademicRepository(db))
	accountSvc := account.NewService(db, dummydb.NewAccountRepository(db), academicSvc, notifier, nopLogger{}, conf)
	spaceSvc := space.NewService(db, dummydb.NewSpaceRepository(db), academicSvc, notifier, nopLogger{})

	en := englocale.New()
	translator, found := ut.New(en, en).GetTranslator("en")
	require.True(t, found)
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	space.InitValidators(validate, translator)

	srv := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      nopLogger{},
		AccountSvc:  accountSvc,
		AcademicSvc: academicSvc,
		SpaceSvc:    spaceSvc,
		Validate:    validate,
		Translator:  translator,
	})

	director, err := accountSvc.EnsureDirector(context.Background())
	require.NoError(t, err)

	return &testServer{
		srv:       srv,
		accounts:  accountSvc,
		academics: academicSvc,
		spaces:    spaceSvc,
		notifier:  notifier,
		director:  director,
	}
}

func (ts *testServer) createInstructor(t *testing.T, email string) account.Account {
	t.Helper()
	res, err := ts.accounts.CreateInstructor(context.Background(), account.NewInstructor{
		Email: email, Surname: "Doe", GivenName: "Jane",
	})
	require.NoError(t, err)
	return res.Account
}

func (ts *testServer) createStudent(t *testing.T, email, year string) account.Account {
	t.Helper()
	res, err := ts.accounts.CreateStudent(context.Background(), account.NewStudent{
		Email: email, Surname: "Smith", GivenName: "John", AcademicYear: year,
	})
	require.NoError(t, err)
	return res.Account
}

func getToken(t *testing.T, acct account.Account) string {
	t.Helper()
	token, err := GenerateToken(GetAccountClaims(acct))
	require.NoError(t, err)
	return token
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}
