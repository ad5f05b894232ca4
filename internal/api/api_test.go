package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/config"
	"github.com/yourname/fittrack/internal/storage"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, env map[string]string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.Parse(func(k string) string { return env[k] })
	require.NoError(t, err)
	logger := internal.NopLogger()
	store := storage.NewMemoryStore(logger)
	local := auth.NewLocalAuthProvider(cfg.JWTSecret, cfg.TokenTTL, store, logger)
	app := NewApp(cfg, logger, store, local, WithIssuer(local), WithClock(func() time.Time { return fixedNow }))
	return &testServer{t: t, router: NewRouter(app)}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username, "email": username + "@example.com", "password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &sess))
	return sess.Token
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("alice")

	w, _ := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "alice", "email": "x@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assert.NotContains(t, string(env.Data), "password")

	w, _ = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, 401, env.Error.Code)
}

func TestCalorieCRUDAndOwnership(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice")
	bob := s.register("bob")

	w, env := s.do(http.MethodPost, "/api/calories", alice, map[string]any{"date": "2024-01-09", "totalCalories": 2100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created internal.CalorieEntry
	require.NoError(t, json.Unmarshal(env.Data, &created))

	path := "/api/calories/" + jsonInt(created.ID)
	w, _ = s.do(http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodGet, "/api/calories/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/api/calories/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPut, path, alice, map[string]any{"notes": "late dinner"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated internal.CalorieEntry
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 2100, updated.TotalCalories)
	assert.Equal(t, "late dinner", *updated.Notes)

	w, _ = s.do(http.MethodPost, "/api/calories", alice, map[string]any{"date": "2024-01-09", "totalCalories": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/calories/range/2024-01-01/2024-01-31", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta["count"])
	w, _ = s.do(http.MethodGet, "/api/calories/range/2024-13-01/2024-01-31", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/calories?window=fortnight", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWeightDuplicatePolicies(t *testing.T) {
	merge := newTestServer(t, nil)
	tok := merge.register("alice")
	w, _ := merge.do(http.MethodPost, "/api/weights", tok, map[string]any{"date": "2024-01-09", "weight": 80.5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = merge.do(http.MethodPost, "/api/weights", tok, map[string]any{"date": "2024-01-09", "weight": "79.75"})
	require.Equal(t, http.StatusCreated, w.Code)
	_, env := merge.do(http.MethodGet, "/api/weights", tok, nil)
	assert.EqualValues(t, 1, env.Meta["count"])
	assert.Contains(t, string(env.Data), `"weight":"79.75"`)

	reject := newTestServer(t, map[string]string{"WEIGHT_DUPLICATE_POLICY": "reject"})
	tok = reject.register("alice")
	w, _ = reject.do(http.MethodPost, "/api/weights", tok, map[string]any{"date": "2024-01-09", "weight": 80})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = reject.do(http.MethodPost, "/api/weights", tok, map[string]any{"date": "2024-01-09", "weight": 81})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStatsDashboardAndActivity(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.register("alice")

	w, env := s.do(http.MethodGet, "/api/stats", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"calories":null`)

	s.do(http.MethodPost, "/api/calories", tok, map[string]any{"date": "2024-01-09", "totalCalories": 2000})
	s.do(http.MethodPost, "/api/workouts", tok, map[string]any{"date": "2024-01-09", "type": "hiit", "duration": 20, "intensity": "high"})

	w, env = s.do(http.MethodGet, "/api/stats?timeframe=monthly&window=30days", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Calories struct {
			Average int `json:"average"`
		} `json:"calories"`
		CalorieSeries []json.RawMessage `json:"calorieSeries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 2000, st.Calories.Average)
	assert.NotEmpty(t, st.CalorieSeries)

	w, _ = s.do(http.MethodGet, "/api/stats?timeframe=hourly", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"percentage":80`)

	w, env = s.do(http.MethodGet, "/api/activity/recent?limit=1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	w, _ = s.do(http.MethodGet, "/api/activity/recent?limit=500", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImportAndArchiveDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice")
	bob := s.register("bob")
	s.do(http.MethodPost, "/api/weights", alice, map[string]any{"date": "2024-01-09", "weight": "80.05"})

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fittrack-export-2024-01-10.json")

	imp := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(w.Body.Bytes()))
	imp.Header.Set("Authorization", "Bearer "+bob)
	imp.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	s.router.ServeHTTP(w2, imp)
	require.Equal(t, http.StatusOK, w2.Code, w2.Body.String())

	_, env := s.do(http.MethodGet, "/api/weights", bob, nil)
	assert.Contains(t, string(env.Data), `"weight":"80.05"`)

	w3, _ := s.do(http.MethodPost, "/api/export/archive", alice, nil)
	assert.Equal(t, http.StatusNotImplemented, w3.Code)
}

func TestRequestIDAndHealth(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w2, _ := s.do(http.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
}

func TestRemoteModeDisablesLocalLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Parse(func(k string) string {
		return map[string]string{"AUTH_MODE": "remote", "AUTH_SERVICE_URL": "http://127.0.0.1:1"}[k]
	})
	require.NoError(t, err)
	store := storage.NewMemoryStore(internal.NopLogger())
	remote := auth.NewRemoteAuthProvider(cfg.AuthServiceURL, "", store, internal.NopLogger())
	r := NewRouter(NewApp(cfg, internal.NopLogger(), store, remote))

	body := bytes.NewBufferString(`{"email":"a@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body).WithContext(context.Background())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
