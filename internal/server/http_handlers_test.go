package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atscore/internal/config"
	"atscore/internal/observability"
	"atscore/internal/scoring"
	"atscore/internal/semantic"
	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testResume = `Jane Doe
Skills
Go, Kubernetes, PostgreSQL, Docker
Experience
Built Go microservices on Kubernetes, cutting latency by 40% for 3 teams.`

	testJobDescription = `We are hiring a backend engineer with Go, Kubernetes, Terraform and PostgreSQL experience.`
)

func newTestServer(t *testing.T, keys ...string) (*Server, http.Handler) {
	t.Helper()

	s := NewServer(&config.Config{}, ServerConfig{
		Version:        "test",
		APIKeys:        keys,
		MaxRequestSize: 1 << 20,
	}, nil)

	eng, err := scoring.NewEngine(scoring.Options{
		Semantic:    semantic.NewScorer(semantic.NewHashingEmbedder(64), nil),
		Composition: types.DefaultCompositionWeights(),
		Readiness:   types.DefaultReadinessWeights(),
	})
	require.NoError(t, err)
	s.SetEngine(eng)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{})
	require.NoError(t, err)

	return s, s.setupRoutes(om)
}

func postJSON(t *testing.T, h http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func documents() DocumentsRequest {
	return DocumentsRequest{Resume: testResume, JobDescription: testJobDescription}
}

func TestAuthMiddleware(t *testing.T) {
	_, h := newTestServer(t, "secret-key-123")

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret-key-123"}, http.StatusOK},
		{"bearer token", map[string]string{"Authorization": "Bearer secret-key-123"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/scores", documents(), tt.headers)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAPIKeyRotationTakesEffect(t *testing.T) {
	s, h := newTestServer(t, "old-key")

	s.SetAPIKeys([]string{"new-key"})

	rec := postJSON(t, h, "/skills", documents(), map[string]string{"X-API-Key": "old-key"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, h, "/skills", documents(), map[string]string{"X-API-Key": "new-key"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestValidation(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		path string
		body any
		want string
	}{
		{"missing resume", "/scores", map[string]string{"jobDescription": "Go"}, "resume failed 'required'"},
		{"missing job description", "/analyze", map[string]string{"resume": "Go"}, "jobDescription failed 'required'"},
		{"score out of range", "/readiness", ReadinessRequest{Semantic: 120}, "semantic failed 'lte=100'"},
		{"negative weight", "/analyze", AnalyzeRequest{
			DocumentsRequest: documents(),
			Weights:          &WeightsPayload{Semantic: -1},
		}, "semantic failed 'gte=0'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, tt.path, tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid request", resp.Error)
			assert.Contains(t, resp.Message, tt.want)
		})
	}
}

func TestRequestRejectsNonJSON(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/scores", bytes.NewBufferString("resume=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "content-type must be application/json")
}

func TestRequestSizeLimit(t *testing.T) {
	s, h := newTestServer(t)
	s.MaxRequestSize = 64

	rec := postJSON(t, h, "/scores", documents(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScoresEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := postJSON(t, h, "/scores", documents(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scores types.Scores
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scores))
	assert.Greater(t, float64(scores.Keyword), 0.0)
	assert.GreaterOrEqual(t, float64(scores.Final), 0.0)
	assert.LessOrEqual(t, float64(scores.Final), 100.0)
}

func TestSkillsEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := postJSON(t, h, "/skills", documents(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var gap types.SkillGapReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gap))
	assert.Contains(t, gap.MatchedSkills, "kubernetes")
	assert.Contains(t, gap.MissingSkills, "terraform")
	assert.NotEmpty(t, gap.Guidance)
}

func TestReadinessEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name    string
		weights *WeightsPayload
		want    float64
	}{
		{"explicit weights", &WeightsPayload{Semantic: 0.4, Keyword: 0.3, Skill: 0.2, Quality: 0.1}, 74},
		{"unnormalized weights", &WeightsPayload{Semantic: 4, Keyword: 3, Skill: 2, Quality: 1}, 74},
		{"equal weights", &WeightsPayload{Semantic: 1, Keyword: 1, Skill: 1, Quality: 1}, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/readiness", ReadinessRequest{
				Semantic: 80, Keyword: 60, Skill: 100, Quality: 40,
				Weights: tt.weights,
			}, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var result types.ReadinessResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.InDelta(t, tt.want, float64(result.Readiness), 0.01)
			assert.InDelta(t, 1.0, result.Weights.Sum(), 1e-9)
		})
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := postJSON(t, h, "/analyze", AnalyzeRequest{DocumentsRequest: documents()}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.ID)
	assert.Contains(t, report.MissingSkills, "terraform")
	assert.NotEmpty(t, report.Sections.Skills)
	assert.InDelta(t, 1.0, report.Weights.Sum(), 1e-9)
}

func TestReportEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := postJSON(t, h, "/report", AnalyzeRequest{DocumentsRequest: documents()}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ats-report-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestEngineNotReady(t *testing.T) {
	s, h := newTestServer(t)
	s.SetEngine(nil)

	rec := postJSON(t, h, "/scores", documents(), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	health := httptest.NewRecorder()
	h.ServeHTTP(health, req)
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)
	assert.Contains(t, health.Body.String(), "starting")
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Contains(t, body, "vocabulary")
	assert.Contains(t, body, "embedding")
}

func TestStatsEndpoint(t *testing.T) {
	_, h := newTestServer(t, "k1", "k2")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Server struct {
			APIKeysConfigured int `json:"api_keys_configured"`
		} `json:"server"`
		RateLimiting map[string]any `json:"rate_limiting"`
		Vocabulary   struct {
			Reloads  int64 `json:"reloads"`
			Watching bool  `json:"watching"`
			Terms    int   `json:"terms"`
		} `json:"vocabulary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Server.APIKeysConfigured)
	assert.Equal(t, false, body.RateLimiting["enabled"])
	assert.Zero(t, body.Vocabulary.Reloads)
	assert.False(t, body.Vocabulary.Watching)
	assert.Greater(t, body.Vocabulary.Terms, 0)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
