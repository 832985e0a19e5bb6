package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/browser"
	cachememory "github.com/interviewbot/jobscout/internal/cache/memory"
	"github.com/interviewbot/jobscout/internal/clock/system"
	"github.com/interviewbot/jobscout/internal/ingest"
	"github.com/interviewbot/jobscout/internal/ingest/ssrf"
	"github.com/interviewbot/jobscout/internal/ratelimit"
	"github.com/interviewbot/jobscout/internal/robots"
	storememory "github.com/interviewbot/jobscout/internal/store/memory"
	blobmemory "github.com/interviewbot/jobscout/internal/storage/memory"
)

type fakeBrowser struct {
	result *ingest.FetchResult
	err    error
	pdf    []byte
	pdfErr error
}

func (f *fakeBrowser) Fetch(context.Context, string, time.Duration) (*ingest.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBrowser) GeneratePDF(context.Context, string) ([]byte, error) {
	return f.pdf, f.pdfErr
}

type serverFixture struct {
	server *Server
	cache  *cachememory.Cache
	blobs  *blobmemory.BlobStore
	store  *storememory.HealthStore
}

func newFixture(t *testing.T, b Browser) *serverFixture {
	t.Helper()
	cache := cachememory.New()
	blobs := blobmemory.New()
	store := storememory.New()
	logger := zap.NewNop()
	server := NewServer(
		b,
		robots.New(cache, logger),
		ratelimit.New(system.New(), logger),
		ssrf.New(),
		blobs,
		store,
		logger,
	)
	return &serverFixture{server: server, cache: cache, blobs: blobs, store: store}
}

// allowRobots seeds an empty robots.txt so the checker permits everything
// without touching the network.
func (f *serverFixture) allowRobots(t *testing.T, domain string) {
	t.Helper()
	require.NoError(t, f.cache.Set(context.Background(), "robots:"+domain, "", time.Hour))
}

func (f *serverFixture) denyRobots(t *testing.T, domain string) {
	t.Helper()
	require.NoError(t, f.cache.Set(context.Background(), "robots:"+domain,
		"User-agent: *\nDisallow: /\n", time.Hour))
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFetchPostingSuccess(t *testing.T) {
	fake := &fakeBrowser{result: &ingest.FetchResult{
		URL:      "https://www.saramin.co.kr/jobs/1",
		FinalURL: "https://www.saramin.co.kr/jobs/1",
		HTML:     "<html><body>posting</body></html>",
		Duration: 1200 * time.Millisecond,
	}}
	fx := newFixture(t, fake)
	fx.allowRobots(t, "www.saramin.co.kr")

	rec := postJSON(t, fx.server.Handler(), "/v1/fetch",
		fetchRequest{URL: "https://www.saramin.co.kr/jobs/1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp fetchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.HTML, "posting")
	assert.Equal(t, int64(1200), resp.DurationMs)
}

func TestFetchPostingRobotsDenied(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{})
	fx.denyRobots(t, "www.saramin.co.kr")

	rec := postJSON(t, fx.server.Handler(), "/v1/fetch",
		fetchRequest{URL: "https://www.saramin.co.kr/jobs/1"})

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "robots_disallowed")
}

func TestFetchPostingQuotaExhausted(t *testing.T) {
	fake := &fakeBrowser{result: &ingest.FetchResult{HTML: "<html></html>"}}
	fx := newFixture(t, fake)
	fx.allowRobots(t, "tiny-board.example")

	// Unknown sites default to 5 requests per hour.
	for i := 0; i < 5; i++ {
		rec := postJSON(t, fx.server.Handler(), "/v1/fetch",
			fetchRequest{URL: fmt.Sprintf("https://tiny-board.example/jobs/%d", i)})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postJSON(t, fx.server.Handler(), "/v1/fetch",
		fetchRequest{URL: "https://tiny-board.example/jobs/6"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp rateLimitedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limited", resp.Error)
	assert.Greater(t, resp.RetryAfterMs, int64(0))
}

func TestFetchPostingQueueTimeout(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{err: browser.ErrQueueTimeout})
	fx.allowRobots(t, "www.saramin.co.kr")

	rec := postJSON(t, fx.server.Handler(), "/v1/fetch",
		fetchRequest{URL: "https://www.saramin.co.kr/jobs/1"})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestFetchPostingRejectsBadURLs(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{})

	rec := postJSON(t, fx.server.Handler(), "/v1/fetch", fetchRequest{URL: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, fx.server.Handler(), "/v1/fetch",
		fetchRequest{URL: "http://169.254.169.254/latest/meta-data"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsafe url")
}

func TestFetchPostingStoresArtifacts(t *testing.T) {
	fake := &fakeBrowser{result: &ingest.FetchResult{
		HTML: "<html></html>",
		Screenshots: []ingest.Screenshot{
			{DataURL: "data:image/png;base64,cG5nLWJ5dGVz", Source: "fullpage"},
		},
	}}
	fx := newFixture(t, fake)
	fx.allowRobots(t, "www.catch.co.kr")

	rec := postJSON(t, fx.server.Handler(), "/v1/fetch",
		fetchRequest{URL: "https://www.catch.co.kr/jobs/1", StoreArtifacts: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp fetchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Artifacts, 1)
	assert.Contains(t, resp.Artifacts[0], "mem://screenshots/")
	assert.Equal(t, 1, fx.blobs.Len())
}

func TestGeneratePDF(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{pdf: []byte("%PDF-1.7 fake")})

	rec := postJSON(t, fx.server.Handler(), "/v1/pdf", pdfRequest{HTML: "<html><body>이력서</body></html>"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7 fake", rec.Body.String())

	rec = postJSON(t, fx.server.Handler(), "/v1/pdf", pdfRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalizePosting(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{})

	rec := postJSON(t, fx.server.Handler(), "/v1/normalize", normalizeRequest{
		Posting: ingest.JobPosting{
			Location:    "서울특별시 강남구 역삼동 123-4",
			Deadline:    "2026.03.15",
			SalaryRange: "면접 후 결정",
			TechStack:   []string{"js", "자바스크립트", "React"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp normalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "서울 강남구", resp.Posting.Location)
	assert.Equal(t, "2026-03-15", resp.Posting.Deadline)
	assert.Equal(t, "협의", resp.Posting.SalaryRange)
	require.Len(t, resp.TechStack, 2)
	assert.Equal(t, "JavaScript", resp.TechStack[0].Normalized)
}

func TestAnalyzeSkillGap(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{})

	rec := postJSON(t, fx.server.Handler(), "/v1/analyze", analyzeRequest{
		UserSkills: []ingest.Skill{{Name: "Java", Proficiency: 5}},
		Posting: ingest.JobPosting{
			TechStack:    []string{"Java", "Spring Boot"},
			Requirements: []string{"Java 기반 서버 개발 경험"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		MatchScore int `json:"match_score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 50, result.MatchScore)
}

func TestHealthReportEndpoint(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{})
	require.NoError(t, fx.store.SaveReport(context.Background(), ingest.HealthReport{RunID: "run-1"}))

	req := httptest.NewRequest(http.MethodGet, "/v1/health-report?limit=5", nil)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run-1")

	req = httptest.NewRequest(http.MethodGet, "/v1/health-report?limit=bogus", nil)
	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t, &fakeBrowser{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
