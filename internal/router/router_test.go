package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workflow-go/internal/config"
	"workflow-go/internal/dto"
	"workflow-go/internal/repository"
	"workflow-go/internal/storage"
	"workflow-go/internal/utils"
	"workflow-go/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine  *gin.Engine
	streams *redis_limiter.LocalLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{BasePath: "/api"},
		JWT:    config.JWTConfig{SecretKey: "test-secret", Algorithm: "HS256", ExpireMinutes: 60},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxSizeMB: 1},
		Simulation: config.SimulationConfig{
			IntervalMS:        10,
			MaxStreamsPerUser: 1,
		},
		CORS: config.CORSConfig{Origins: []string{"*"}},
	}

	logger, _ := test.NewNullLogger()
	blobs, err := storage.NewLocalStore(cfg.Upload.Dir)
	require.NoError(t, err)
	streams := redis_limiter.NewLocalLimiter(cfg.Simulation.MaxStreamsPerUser)

	return &testServer{
		engine:  SetupRouter(cfg, logger, repository.NewMemoryStore(), blobs, streams),
		streams: streams,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, name, email string) dto.AuthResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Name: name, Email: email, Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@example.com")
	assert.Equal(t, "Alice", alice.User.Name)
	assert.Equal(t, "alice@example.com", alice.User.Email)

	t.Run("duplicate", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Name: "Eve", Email: "alice@example.com", Password: "other123"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "User already exists", errorMessage(t, w))

		w = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
		assert.Equal(t, http.StatusOK, w.Code, "first user keeps working")
	})

	t.Run("invalid body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Name: "Bob", Email: "not-an-email", Password: "secret123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorMessage(t, w), "email")
	})

	t.Run("login failures look the same", func(t *testing.T) {
		wrongPassword := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "alice@example.com", Password: "nope"})
		unknownEmail := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ghost@example.com", Password: "nope"})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})

	t.Run("verify", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/auth/verify", alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.VerifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, alice.User.ID, resp.User.ID)

		w = s.do(t, http.MethodGet, "/api/auth/verify", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Access token required", errorMessage(t, w))

		w = s.do(t, http.MethodGet, "/api/auth/verify", "garbage", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Invalid token", errorMessage(t, w))
	})

	t.Run("verify unknown user", func(t *testing.T) {
		// A token signed with the same secret for a user this process never saw.
		other := newTestServer(t)
		ghost := other.register(t, "Ghost", "ghost@example.com")

		w := s.do(t, http.MethodGet, "/api/auth/verify", ghost.Token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", errorMessage(t, w))
	})
}

func TestUploadAndList(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	w := s.upload(t, alice.Token, "data.csv", []byte("a,b,c\n1,2,3\n4,5,6\n7,8,9\n10,11,12\n13,14,15\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded dto.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.Equal(t, 5, uploaded.Records)
	assert.Equal(t, 3, uploaded.Columns)
	assert.GreaterOrEqual(t, uploaded.PassRate, 75)
	assert.LessOrEqual(t, uploaded.PassRate, 94)
	assert.Equal(t, "6 months", uploaded.DateRange)
	assert.NotEmpty(t, uploaded.FileID)

	t.Run("malformed", func(t *testing.T) {
		w := s.upload(t, alice.Token, "bad.csv", []byte("a,b\n1,2,3\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid CSV file", errorMessage(t, w))
	})

	t.Run("too large", func(t *testing.T) {
		// MaxSizeMB is 1 in the test config.
		big := append([]byte("a,b\n"), bytes.Repeat([]byte("1,2\n"), 600000)...)
		w := s.upload(t, alice.Token, "big.csv", big)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"File too large"}`, w.Body.String())
	})

	t.Run("no file", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/upload", alice.Token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file uploaded", errorMessage(t, w))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/datasets", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("list is per owner", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/datasets", alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []dto.DatasetSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1, "rejected uploads leave no record")
		assert.Equal(t, uploaded.FileID, list[0].ID)
		assert.Equal(t, "data.csv", list[0].Name)
		assert.Equal(t, "uploaded", list[0].Status)
		assert.NotContains(t, w.Body.String(), "filePath")

		w = s.do(t, http.MethodGet, "/api/datasets", bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestDateRanges(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var b strings.Builder
	b.WriteString("date,value\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "%s,%d\n", start.AddDate(0, 0, i).Format("2006-01-02"), i)
	}
	w := s.upload(t, alice.Token, "daily.csv", []byte(b.String()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var uploaded dto.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	day := func(d int) time.Time { return start.AddDate(0, 0, d) }
	req := dto.DateRangesRequest{
		TrainStart: day(0), TrainEnd: day(5),
		TestStart: day(6), TestEnd: day(7),
		SimStart: day(8), SimEnd: day(9),
	}
	path := "/api/datasets/" + uploaded.FileID + "/date-ranges"

	w = s.do(t, http.MethodPost, path, alice.Token, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.DateRangesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.DateRangesValid, resp.Status)
	require.NotNil(t, resp.Counts)
	assert.Equal(t, dto.DateRangesCounts{Training: 6, Testing: 2, Simulation: 2}, *resp.Counts)

	req.SimEnd = day(20)
	w = s.do(t, http.MethodPost, path, alice.Token, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.DateRangesInvalid, resp.Status)
	assert.NotEmpty(t, resp.Message)

	w = s.do(t, http.MethodPost, path, bob.Token, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, path, alice.Token, map[string]string{"trainStart": "2024-03-01T00:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulationEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@example.com")

	w := s.do(t, http.MethodGet, "/api/simulation/metrics", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics dto.Metrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.GreaterOrEqual(t, metrics.Accuracy, 90.0)
	assert.Less(t, metrics.Accuracy, 100.0)

	w = s.do(t, http.MethodPost, "/api/simulation/train", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var trained dto.TrainResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trained))
	assert.Equal(t, "model_trained", trained.Status)

	w = s.do(t, http.MethodPost, "/api/simulation/train", alice.Token, dto.TrainRequest{DatasetID: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/simulation/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSimulationStream(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@example.com")

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/simulation/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+alice.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	seen := map[string]bool{}
	for len(seen) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "data: "), line)

		var event dto.PredictionEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		assert.Contains(t, []string{"pass", "fail"}, event.Prediction)
		assert.GreaterOrEqual(t, event.Confidence, 70.0)
		assert.Less(t, event.Confidence, 100.0)
		assert.False(t, seen[event.ID], "event ids are unique")
		seen[event.ID] = true
	}

	// One stream per user in this configuration.
	second := s.do(t, http.MethodGet, "/api/simulation/stream", alice.Token, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "Too many open streams", errorMessage(t, second))

	cancel()
	assert.Eventually(t, func() bool {
		n, _ := s.streams.GetCurrent(context.Background(), alice.User.ID)
		return n == 0
	}, 2*time.Second, 10*time.Millisecond, "stream handler returns after disconnect")
}
