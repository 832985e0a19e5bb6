package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/browser"
	"github.com/interviewbot/jobscout/internal/ingest"
	"github.com/interviewbot/jobscout/internal/normalize"
	"github.com/interviewbot/jobscout/internal/skillgap"
)

const (
	defaultFetchTimeout   = 30 * time.Second
	siteConcurrencyWait   = 30 * time.Second
	defaultReportLimit    = 10
	screenshotContentType = "image/png"
)

type fetchRequest struct {
	URL            string `json:"url"`
	TimeoutMs      int    `json:"timeout_ms,omitempty"`
	StoreArtifacts bool   `json:"store_artifacts,omitempty"`
}

type fetchResponse struct {
	URL         string              `json:"url"`
	FinalURL    string              `json:"final_url"`
	HTML        string              `json:"html"`
	Screenshots []ingest.Screenshot `json:"screenshots,omitempty"`
	DurationMs  int64               `json:"duration_ms"`
	Artifacts   []string            `json:"artifacts,omitempty"`
}

type rateLimitedResponse struct {
	Error        string `json:"error"`
	RetryAfterMs int64  `json:"retry_after_ms,omitempty"`
}

// fetchPosting runs the full gate pipeline: URL safety, robots, hourly
// quota, per-site concurrency, then the browser.
func (s *Server) fetchPosting(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(s.logger, w, http.StatusBadRequest, "url is required")
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Hostname() == "" {
		writeError(s.logger, w, http.StatusBadRequest, "invalid url")
		return
	}
	if s.validator != nil && !s.validator.IsSafe(req.URL) {
		writeError(s.logger, w, http.StatusBadRequest, "unsafe url")
		return
	}

	if decision := s.robots.Check(r.Context(), req.URL); !decision.Allowed {
		writeJSON(s.logger, w, http.StatusForbidden, map[string]string{
			"error":  "robots_disallowed",
			"reason": decision.Reason,
		})
		return
	}

	host := parsed.Hostname()
	if decision := s.limiter.Check(host); !decision.Allowed {
		writeJSON(s.logger, w, http.StatusTooManyRequests, rateLimitedResponse{
			Error:        "rate_limited",
			RetryAfterMs: decision.RetryAfter.Milliseconds(),
		})
		return
	}

	release := s.limiter.AcquireConcurrency(r.Context(), host, siteConcurrencyWait)
	if release == nil {
		writeJSON(s.logger, w, http.StatusTooManyRequests, rateLimitedResponse{
			Error: "site_busy",
		})
		return
	}
	defer release()

	timeout := defaultFetchTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}

	result, err := s.browser.Fetch(r.Context(), req.URL, timeout)
	if errors.Is(err, browser.ErrQueueTimeout) {
		writeError(s.logger, w, http.StatusGatewayTimeout, "browser pool queue timeout")
		return
	}
	if err != nil {
		// The navigation was issued; it still counts against the quota.
		s.limiter.RecordRequest(host)
		s.logger.Warn("fetch failed", zap.String("url", req.URL), zap.Error(err))
		writeError(s.logger, w, http.StatusBadGateway, fmt.Sprintf("fetch failed: %v", err))
		return
	}
	s.limiter.RecordRequest(host)

	resp := fetchResponse{
		URL:         result.URL,
		FinalURL:    result.FinalURL,
		HTML:        result.HTML,
		Screenshots: result.Screenshots,
		DurationMs:  result.Duration.Milliseconds(),
	}
	if req.StoreArtifacts {
		resp.Artifacts = s.storeScreenshots(r, result)
	}
	writeJSON(s.logger, w, http.StatusOK, resp)
}

// storeScreenshots persists captured screenshots and returns their URIs.
// Storage trouble is logged, not surfaced; the fetch already succeeded.
func (s *Server) storeScreenshots(r *http.Request, result *ingest.FetchResult) []string {
	if s.blobs == nil || len(result.Screenshots) == 0 {
		return nil
	}
	var uris []string
	for i, shot := range result.Screenshots {
		data, err := decodeDataURL(shot.DataURL)
		if err != nil {
			s.logger.Warn("decode screenshot", zap.Error(err))
			continue
		}
		path := fmt.Sprintf("screenshots/%s/%d-%s.png", uuid.NewString(), i, shot.Source)
		uri, err := s.blobs.PutObject(r.Context(), path, screenshotContentType, data)
		if err != nil {
			s.logger.Warn("store screenshot", zap.Error(err))
			continue
		}
		uris = append(uris, uri)
	}
	return uris
}

func decodeDataURL(dataURL string) ([]byte, error) {
	const marker = "base64,"
	idx := strings.Index(dataURL, marker)
	if idx < 0 {
		return nil, fmt.Errorf("not a base64 data url")
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[idx+len(marker):])
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}

type pdfRequest struct {
	HTML string `json:"html"`
}

func (s *Server) generatePDF(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HTML == "" {
		writeError(s.logger, w, http.StatusBadRequest, "html is required")
		return
	}

	pdf, err := s.browser.GeneratePDF(r.Context(), req.HTML)
	if errors.Is(err, browser.ErrQueueTimeout) {
		writeError(s.logger, w, http.StatusGatewayTimeout, "browser pool queue timeout")
		return
	}
	if err != nil {
		s.logger.Warn("pdf generation failed", zap.Error(err))
		writeError(s.logger, w, http.StatusBadGateway, fmt.Sprintf("pdf generation failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Error("write pdf response", zap.Error(err))
	}
}

type normalizeRequest struct {
	Posting ingest.JobPosting `json:"posting"`
}

type normalizeResponse struct {
	Posting   ingest.JobPosting `json:"posting"`
	TechStack []normalize.Tech  `json:"tech_stack,omitempty"`
}

func (s *Server) normalizePosting(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, normalizeResponse{
		Posting:   normalize.Posting(req.Posting),
		TechStack: normalize.TechStack(req.Posting.TechStack),
	})
}

type analyzeRequest struct {
	UserSkills []ingest.Skill    `json:"user_skills"`
	Posting    ingest.JobPosting `json:"posting"`
}

func (s *Server) analyzeSkillGap(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result := skillgap.Analyze(req.UserSkills, req.Posting.TechStack,
		req.Posting.Requirements, req.Posting.PreferredQualifications)
	writeJSON(s.logger, w, http.StatusOK, result)
}

func (s *Server) healthReport(w http.ResponseWriter, r *http.Request) {
	if s.healthStore == nil {
		writeError(s.logger, w, http.StatusNotFound, "health reports not configured")
		return
	}
	limit := defaultReportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(s.logger, w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	reports, err := s.healthStore.ListReports(r.Context(), limit)
	if err != nil {
		s.logger.Error("list health reports", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to load health reports")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{"reports": reports})
}
