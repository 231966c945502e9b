package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/theater-cop/internal/llm"
	"github.com/talgya/theater-cop/internal/persistence"
	"github.com/talgya/theater-cop/internal/theater"
)

type stubGenerator struct {
	mu   sync.Mutex
	text string
	err  error
	reqs []llm.Request
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	return g.text, g.err
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

type stubConversation struct{ replies []string }

func (c *stubConversation) Send(_ context.Context, msg string) (string, error) {
	c.replies = append(c.replies, msg)
	return "ACK: " + msg, nil
}

type stubStarter struct{ started int }

func (s *stubStarter) StartChat(context.Context, string) (llm.Conversation, error) {
	s.started++
	return &stubConversation{}, nil
}

func newTestServer(t *testing.T, gen llm.Generator) (*Server, http.Handler) {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "cop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedMessages(theater.SeedMessages()))

	reg := prometheus.NewRegistry()
	s := &Server{
		LLM:         gen,
		DB:          db,
		Metrics:     MustNewMetrics(reg),
		Gatherer:    reg,
		BriefingTTL: 5 * time.Minute,
		TickerTTL:   time.Minute,
	}
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatusReportsLLMDisabled(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[map[string]any](t, rec)
	assert.Equal(t, false, status["llm_enabled"])
	assert.EqualValues(t, 9, status["pages"])
	assert.EqualValues(t, 3, status["nodes"])
}

func TestNodeLookup(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/node/DARWIN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	node := decode[theater.MapNode](t, rec)
	assert.Equal(t, "Darwin Logistics Base", node.Name)

	rec = do(t, h, http.MethodGet, "/api/v1/node/NOWHERE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogisticsOffsetValidation(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/logistics?t=49", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/logistics?t=24", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[struct {
		OffsetHours int                       `json:"offset_hours"`
		Logistics   []theater.LogisticsStatus `json:"logistics"`
	}](t, rec)
	assert.Equal(t, 24, out.OffsetHours)
	require.Len(t, out.Logistics, 3)
	for _, l := range out.Logistics {
		assert.GreaterOrEqual(t, l.Value, 0)
		assert.LessOrEqual(t, l.Value, 100)
	}
}

func TestBriefingFallbackWithoutLLM(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/intel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[briefingResponse](t, rec)
	assert.True(t, b.Fallback)
	assert.Equal(t, llm.PanelIntel.Fallback(), b.Text)
	require.NotNil(t, b.Sections)
	assert.Equal(t, llm.PanelIntel.Fallback(), b.Sections.OSINT)
	assert.Equal(t, llm.NoData, b.Sections.SIGINT)
	assert.Equal(t, llm.NoData, b.Sections.HIMINT)
}

func TestBriefingUnknownPanel(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/briefing/weather", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisBriefingIsCachedAndArchived(t *testing.T) {
	gen := &stubGenerator{text: "SITREP\nCRITICAL: Darwin CL V below 40%\nRoutes nominal"}
	_, h := newTestServer(t, gen)

	rec := do(t, h, http.MethodGet, "/api/v1/briefing/analysis?t=12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[briefingResponse](t, rec)
	assert.False(t, first.Fallback)
	assert.False(t, first.Cached)
	require.Len(t, first.Lines, 3)
	assert.True(t, first.Lines[1].Critical)
	assert.False(t, first.Lines[2].Critical)

	rec = do(t, h, http.MethodGet, "/api/v1/briefing/analysis?t=12", "")
	second := decode[briefingResponse](t, rec)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.reqs[0].Prompt, "T+12 hours")

	// A different offset is a different briefing.
	do(t, h, http.MethodGet, "/api/v1/briefing/analysis?t=36", "")
	assert.Equal(t, 2, gen.calls())

	rec = do(t, h, http.MethodGet, "/api/v1/briefings/history?panel=analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]map[string]any](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, "t=36", history[0]["args"])
	assert.NotEmpty(t, history[0]["age"])
}

func TestFallbackIsNotCached(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream 503")}
	_, h := newTestServer(t, gen)

	for range 2 {
		rec := do(t, h, http.MethodGet, "/api/v1/ticker", "")
		b := decode[briefingResponse](t, rec)
		assert.True(t, b.Fallback)
		assert.False(t, b.Cached)
		assert.Equal(t, []string{
			"CRITICAL LOW: CLASS V @ DARWIN NODE (40% STOCK)",
			"INTERCEPT DETECTED SECTOR 7",
			"ALT ROUTE BRAVO-2 ACTIVATED",
		}, b.Alerts)
	}
	assert.Equal(t, 2, gen.calls())

	rec := do(t, h, http.MethodGet, "/api/v1/briefings/history", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestIntelSections(t *testing.T) {
	gen := &stubGenerator{text: "OSINT: calm media\nSIGINT: burst traffic sector 7\nHIMINT: carrier group sighted"}
	_, h := newTestServer(t, gen)

	b := decode[briefingResponse](t, do(t, h, http.MethodGet, "/api/v1/intel", ""))
	require.NotNil(t, b.Sections)
	assert.Equal(t, "calm media", b.Sections.OSINT)
	assert.Equal(t, "burst traffic sector 7", b.Sections.SIGINT)
	assert.Equal(t, "carrier group sighted", b.Sections.HIMINT)
}

func TestMissionReview(t *testing.T) {
	gen := &stubGenerator{text: "VIABLE"}
	_, h := newTestServer(t, gen)

	rec := do(t, h, http.MethodPost, "/api/v1/briefing/mission", `{"name":"  ","objectives":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/briefing/mission", `{"name":"op trident","objectives":[" ",""]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, gen.calls())

	body := `{"name":"op trident","objectives":["Secure Lombok Strait","Resupply Darwin"]}`
	for range 2 {
		rec = do(t, h, http.MethodPost, "/api/v1/briefing/mission", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	// Reviews bypass the cache.
	assert.Equal(t, 2, gen.calls())
	assert.Contains(t, gen.reqs[0].Prompt, `"OP TRIDENT"`)
	assert.Contains(t, gen.reqs[0].Prompt, "Secure Lombok Strait, Resupply Darwin")
}

func TestMessages(t *testing.T) {
	_, h := newTestServer(t, nil)

	seeded := decode[[]theater.SecureMessage](t, do(t, h, http.MethodGet, "/api/v1/messages", ""))
	require.NotEmpty(t, seeded)

	rec := do(t, h, http.MethodPost, "/api/v1/messages", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/messages", `{"text":"  Confirm ETA for convoy 4  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode[theater.SecureMessage](t, rec)
	assert.Equal(t, "Confirm ETA for convoy 4", msg.Text)
	assert.Equal(t, theater.SenderMe, msg.Sender)
	assert.Equal(t, theater.Secret, msg.Classification)
	assert.True(t, msg.IsMe)
	assert.Regexp(t, `^\d{4}Z$`, msg.Timestamp)

	all := decode[[]theater.SecureMessage](t, do(t, h, http.MethodGet, "/api/v1/messages", ""))
	require.Len(t, all, len(seeded)+1)
	assert.Equal(t, msg.ID, all[len(all)-1].ID)
}

func TestAdvisorSessions(t *testing.T) {
	starter := &stubStarter{}
	s, h := newTestServer(t, nil)
	s.Chats = starter
	s.advisors = newAdvisorStore(4, starter)

	rec := do(t, h, http.MethodPost, "/api/v1/advisor", `{"session_id":"not-a-uuid","message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/advisor", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	first := decode[map[string]any](t, do(t, h, http.MethodPost, "/api/v1/advisor", `{"message":"Status of Darwin?"}`))
	assert.Equal(t, llm.AdvisorGreeting, first["greeting"])
	assert.Equal(t, "ACK: Status of Darwin?", first["reply"])
	assert.Equal(t, true, first["ok"])
	id, _ := first["session_id"].(string)
	require.NotEmpty(t, id)

	second := decode[map[string]any](t, do(t, h, http.MethodPost, "/api/v1/advisor",
		`{"session_id":"`+id+`","message":"And Guam?"}`))
	assert.NotContains(t, second, "greeting")
	assert.Equal(t, "ACK: And Guam?", second["reply"])
	assert.Equal(t, 1, starter.started)
}

func TestAdvisorWithoutLLMReportsLinkLost(t *testing.T) {
	_, h := newTestServer(t, nil)
	out := decode[map[string]any](t, do(t, h, http.MethodPost, "/api/v1/advisor", `{"message":"report"}`))
	assert.Equal(t, false, out["ok"])
	assert.Contains(t, out["reply"], "Connection lost")
}

func TestCachePurgeRequiresAdminKey(t *testing.T) {
	gen := &stubGenerator{text: "nominal"}
	s, h := newTestServer(t, gen)

	rec := do(t, h, http.MethodPost, "/api/v1/cache/purge", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.AdminKey = "s3cret"
	for _, auth := range []string{"Bearer wrong", "Bearer s3cre", "Bearer s3cret2", "s3cret", "Basic s3cret"} {
		rec = do(t, h, http.MethodPost, "/api/v1/cache/purge", "", "Authorization", auth)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, auth)
	}

	do(t, h, http.MethodGet, "/api/v1/briefing/health", "")
	rec = do(t, h, http.MethodPost, "/api/v1/cache/purge", "", "Authorization", "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["purged"])

	do(t, h, http.MethodGet, "/api/v1/briefing/health", "")
	assert.Equal(t, 2, gen.calls())
}

func TestBriefingRateLimit(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.BriefingsPerHour = 1
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/ticker", "", "X-Forwarded-For", "10.0.0.9")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/intel", "", "X-Forwarded-For", "10.0.0.9")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Static datasets are not limited.
	rec = do(t, h, http.MethodGet, "/api/v1/nodes", "", "X-Forwarded-For", "10.0.0.9")
	assert.Equal(t, http.StatusOK, rec.Code)

	metrics := do(t, h, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metrics, `cop_http_rate_limited_total{route="intel"} 1`)
	assert.Contains(t, metrics, `cop_briefing_requests_total{outcome="fallback",panel="ticker"} 1`)
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.CORSOrigins = []string{"https://cop.example.mil"}
	h := s.Handler()

	rec := do(t, h, http.MethodOptions, "/api/v1/status", "", "Origin", "https://cop.example.mil")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://cop.example.mil", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/api/v1/status", "", "Origin", "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// blockingGenerator holds every call until release is closed, or fails if
// the call's context ends first.
type blockingGenerator struct {
	text    string
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newBlockingGenerator(text string) *blockingGenerator {
	return &blockingGenerator{
		text:    text,
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *blockingGenerator) Generate(ctx context.Context, _ llm.Request) (string, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
		return g.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestConcurrentMissesShareOneGeneration(t *testing.T) {
	gen := newBlockingGenerator("OSINT: quiet\nSIGINT: burst\nHIMINT: convoy")
	_, h := newTestServer(t, gen)

	const n = 8
	var wg sync.WaitGroup
	results := make([]briefingResponse, n)
	codes := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(t, h, http.MethodGet, "/api/v1/intel", "")
			codes[i] = rec.Code
			json.Unmarshal(rec.Body.Bytes(), &results[i])
		}()
	}

	<-gen.started
	// Give the remaining requests time to queue behind the first.
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.EqualValues(t, 1, gen.calls.Load())
	for i := range n {
		require.Equal(t, http.StatusOK, codes[i])
		assert.False(t, results[i].Fallback)
		assert.Equal(t, gen.text, results[i].Text)
		require.NotNil(t, results[i].Sections)
		assert.Equal(t, "burst", results[i].Sections.SIGINT)
	}
}

func TestGenerationOutlivesCallerCancel(t *testing.T) {
	gen := newBlockingGenerator("// FLASH: HOSTILE CONTACT SECTOR 4 //")
	_, h := newTestServer(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *httptest.ResponseRecorder)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ticker", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		done <- rec
	}()

	<-gen.started
	cancel()
	// The generation must not observe the caller's cancellation.
	time.Sleep(20 * time.Millisecond)
	close(gen.release)
	<-done

	rec := do(t, h, http.MethodGet, "/api/v1/ticker", "")
	b := decode[briefingResponse](t, rec)
	assert.True(t, b.Cached, "result of the cancelled caller is cached")
	assert.False(t, b.Fallback)
	assert.Equal(t, []string{"FLASH: HOSTILE CONTACT SECTOR 4"}, b.Alerts)
	assert.EqualValues(t, 1, gen.calls.Load())

	history := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/api/v1/briefings/history?panel=ticker", ""))
	require.Len(t, history, 1)
	assert.Equal(t, gen.text, history[0]["text"])
}
