package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job"
	jobrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/repo"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/utilities"
)

const prefix = "/api/v1"

type testServer struct {
	handler http.Handler
	users   *user.UserService
}

type options struct {
	demo    *user.RegisterInput
	limiter *RateLimiter
}

func newTestServer(t *testing.T, opts options) *testServer {
	t.Helper()
	logger := zap.NewNop().Sugar()
	ids, err := utilities.NewIDGenerator(3)
	require.NoError(t, err)
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: []byte("test-secret"), Lifetime: time.Hour})

	users := user.NewUserService(userrepo.NewMemoryRepo(), user.BcryptHasher{Cost: 4}, tokens, ids)
	var demoID int64
	if opts.demo != nil {
		sess, err := users.Register(context.Background(), *opts.demo)
		require.NoError(t, err)
		demoID = sess.User.ID
	}

	jobs := job.NewService(jobrepo.NewMemoryRepo(), ids)
	h := RegisterRoutes(Deps{
		Logger:      logger,
		Prefix:      prefix,
		Guard:       auth.NewGuard(tokens, demoID, logger),
		Users:       user.NewHandler(users, logger),
		Jobs:        job.NewHandler(jobs, logger),
		AuthLimiter: opts.limiter,
		Metrics:     NewMetrics(),
	})
	return &testServer{handler: h, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.serve(s.request(t, method, path, token, body))
}

func (s *testServer) request(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type session struct {
	User struct {
		Name     string `json:"name"`
		LastName string `json:"lastName"`
		Email    string `json:"email"`
		Location string `json:"location"`
		Token    string `json:"token"`
	} `json:"user"`
	Token string `json:"token"`
}

type jobBody struct {
	Job struct {
		ID        string `json:"id"`
		Company   string `json:"company"`
		Position  string `json:"position"`
		Status    string `json:"status"`
		JobType   string `json:"jobType"`
		CreatedBy string `json:"createdBy"`
	} `json:"job"`
}

type msgBody struct {
	Msg string `json:"msg"`
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, prefix+"/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[session](t, rec)
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func (s *testServer) createJob(t *testing.T, token, company, position string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, prefix+"/jobs", token, map[string]string{"company": company, "position": position})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[jobBody](t, rec).Job.ID
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodPost, prefix+"/auth/register", "", map[string]string{
		"name": "Alice", "email": "Alice@Example.com", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[session](t, rec)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, "lastName", sess.User.LastName)
	assert.Equal(t, "My City", sess.User.Location)
	assert.Equal(t, sess.Token, sess.User.Token)

	rec = s.do(t, http.MethodPost, prefix+"/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[msgBody](t, rec).Msg, "email")

	rec = s.do(t, http.MethodPost, prefix+"/auth/login", "", map[string]string{"email": "alice@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[session](t, rec).Token

	rec = s.do(t, http.MethodPost, prefix+"/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid Credentials", decode[msgBody](t, rec).Msg)

	rec = s.do(t, http.MethodPatch, prefix+"/auth/updateUser", token, map[string]string{
		"name": "Alicia", "email": "alicia@example.com", "lastName": "Smith", "location": "Oslo",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alicia", decode[session](t, rec).User.Name)
}

func TestJobLifecycle(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.register(t, "Alice", "alice@example.com")

	id := s.createJob(t, token, "Acme", "Go Developer")

	rec := s.do(t, http.MethodGet, prefix+"/jobs/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[jobBody](t, rec)
	assert.Equal(t, "pending", got.Job.Status)
	assert.Equal(t, "full-time", got.Job.JobType)

	rec = s.do(t, http.MethodPatch, prefix+"/jobs/"+id, token, map[string]string{
		"company": "Acme", "position": "Go Developer", "status": "interview",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "interview", decode[jobBody](t, rec).Job.Status)

	rec = s.do(t, http.MethodPatch, prefix+"/jobs/"+id, token, map[string]string{"company": "Acme"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Company and Position cannot be empty", decode[msgBody](t, rec).Msg)

	rec = s.do(t, http.MethodGet, prefix+"/jobs?status=interview&sort=a-z", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Jobs       []json.RawMessage `json:"jobs"`
		TotalJobs  int               `json:"totalJobs"`
		NumOfPages int               `json:"numOfPages"`
	}](t, rec)
	assert.Equal(t, 1, list.TotalJobs)
	assert.Equal(t, 1, list.NumOfPages)

	rec = s.do(t, http.MethodGet, prefix+"/jobs/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[job.Stats](t, rec)
	assert.Equal(t, job.DefaultStats{Interview: 1}, stats.DefaultStats)
	assert.Len(t, stats.MonthlyApplications, 1)

	rec = s.do(t, http.MethodDelete, prefix+"/jobs/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job with Job ID "+id+" is deleted", rec.Body.String())

	rec = s.do(t, http.MethodGet, prefix+"/jobs/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsAreIsolatedPerUser(t *testing.T) {
	s := newTestServer(t, options{})
	alice := s.register(t, "Alice", "alice@example.com")
	bob := s.register(t, "Bobby", "bob@example.com")
	id := s.createJob(t, alice, "Acme", "Dev")

	for _, tc := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPatch, map[string]string{"company": "Evil", "position": "Corp"}},
		{http.MethodDelete, nil},
	} {
		rec := s.do(t, tc.method, prefix+"/jobs/"+id, bob, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method)
		assert.Equal(t, "No job found with Job ID "+id, decode[msgBody](t, rec).Msg)
	}

	rec := s.do(t, http.MethodGet, prefix+"/jobs?createdBy=anyone", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalJobs":0`)

	rec = s.do(t, http.MethodGet, prefix+"/jobs/"+id, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodGet, prefix+"/jobs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication invalid", decode[msgBody](t, rec).Msg)

	rec = s.do(t, http.MethodGet, prefix+"/jobs", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication failed during token verification", decode[msgBody](t, rec).Msg)
}

func TestMalformedJobID(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.register(t, "Alice", "alice@example.com")

	rec := s.do(t, http.MethodGet, prefix+"/jobs/zzz", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No record found with Job ID : zzz", decode[msgBody](t, rec).Msg)
}

func TestDemoUserIsReadOnly(t *testing.T) {
	demo := user.RegisterInput{Name: "Demo", Email: "demo@example.com", Password: "secret"}
	s := newTestServer(t, options{demo: &demo})

	rec := s.do(t, http.MethodPost, prefix+"/auth/login", "", map[string]string{"email": demo.Email, "password": demo.Password})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[session](t, rec).Token

	rec = s.do(t, http.MethodGet, prefix+"/jobs", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, prefix + "/jobs"},
		{http.MethodPatch, prefix + "/jobs/1541815603606036480"},
		{http.MethodDelete, prefix + "/jobs/1541815603606036480"},
		{http.MethodPatch, prefix + "/auth/updateUser"},
	} {
		rec := s.do(t, tc.method, tc.path, token, map[string]string{"company": "A", "position": "B"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.Equal(t, "Test User. Read Only!", decode[msgBody](t, rec).Msg)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, options{})
	for _, path := range []string{"/nope", prefix + "/jobs/1/extra", prefix + "/auth"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Route does not exist", decode[msgBody](t, rec).Msg)
	}
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, options{limiter: NewRateLimiter(2, 15*time.Minute, false, nil)})
	body := map[string]string{"email": "x@example.com", "password": "whatever"}

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, prefix+"/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(t, http.MethodPost, prefix+"/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many request from this IP, please try again after 15 minutes", decode[msgBody](t, rec).Msg)
}

func TestAuthRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, options{limiter: NewRateLimiter(2, 15*time.Minute, false, nil)})
	body := map[string]string{"email": "x@example.com", "password": "whatever"}

	blocked := 0
	for i := 0; i < 20; i++ {
		req := s.request(t, http.MethodPost, prefix+"/auth/login", "", body)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		if s.serve(req).Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Equal(t, 18, blocked)
}

func TestAuthRateLimit_TrustedProxy(t *testing.T) {
	s := newTestServer(t, options{limiter: NewRateLimiter(1, 15*time.Minute, true, nil)})
	body := map[string]string{"email": "x@example.com", "password": "whatever"}
	login := func(fwd string) int {
		req := s.request(t, http.MethodPost, prefix+"/auth/login", "", body)
		req.Header.Set("X-Forwarded-For", fwd)
		return s.serve(req).Code
	}

	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.7, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("203.0.113.7"))
	assert.Equal(t, http.StatusUnauthorized, login("198.51.100.2"))
}

func TestListJobs_HugePagination(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.register(t, "Alice", "alice@example.com")
	s.createJob(t, token, "Acme", "Dev")

	for _, q := range []string{
		"page=3&limit=9223372036854775807",
		"page=9223372036854775807&limit=10",
	} {
		rec := s.do(t, http.MethodGet, prefix+"/jobs?"+q, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, q)
		list := decode[struct {
			Jobs      []json.RawMessage `json:"jobs"`
			TotalJobs int               `json:"totalJobs"`
		}](t, rec)
		assert.Empty(t, list.Jobs, q)
		assert.Equal(t, 1, list.TotalJobs, q)
	}
}

func TestEmptyBodyReachesValidation(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.register(t, "Alice", "alice@example.com")
	id := s.createJob(t, token, "Acme", "Dev")

	rec := s.do(t, http.MethodPost, prefix+"/auth/login", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please provide email and password", decode[msgBody](t, rec).Msg)

	rec = s.do(t, http.MethodPatch, prefix+"/jobs/"+id, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Company and Position cannot be empty", decode[msgBody](t, rec).Msg)

	rec = s.serve(func() *http.Request {
		req := s.request(t, http.MethodPost, prefix+"/auth/login", "", nil)
		req.Body = io.NopCloser(strings.NewReader("{not json"))
		return req
	}())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid payload", decode[msgBody](t, rec).Msg)
}

func TestHealthMetricsAndHeaders(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "jobs_http_requests_total"), "metrics body lacks request counter")
	assert.Contains(t, rec.Body.String(), `route="GET /health"`)
}
