package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/realtime"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/storage/inmemory"
	testutils "github.com/Yash3561/Nexus/pkg/utils/test"
)

// fakeRealtime serves fixed real-time answers.
type fakeRealtime struct {
	now        time.Time
	weatherErr error
	newsErr    error
}

func (f *fakeRealtime) City() string   { return "New York" }
func (f *fakeRealtime) Now() time.Time { return f.now }

func (f *fakeRealtime) CurrentTime() realtime.TimeInfo {
	return realtime.NewTimeInfo(f.now)
}

func (f *fakeRealtime) Weather(context.Context, float64, float64) (*realtime.Weather, error) {
	if f.weatherErr != nil {
		return nil, f.weatherErr
	}
	return &realtime.Weather{
		Location:    "New York",
		Condition:   "Partly cloudy",
		Temperature: "72°F",
		FeelsLike:   "70°F",
		Humidity:    "48%",
		Wind:        "8 mph",
	}, nil
}

func (f *fakeRealtime) NewsHeadlines(_ context.Context, category string) (*realtime.News, error) {
	if f.newsErr != nil {
		return nil, f.newsErr
	}
	return &realtime.News{
		Category:  category,
		Headlines: []realtime.Headline{{Title: "Markets rally", Source: "Wire"}},
		Count:     1,
	}, nil
}

var errProviderDown = errors.New("provider down")

var sampleResult = &search.Result{
	Query:  "who won the match",
	Answer: "The home team",
	Results: []search.Hit{
		{Title: "Match report", URL: "https://www.sports.example/report", Content: "The home team won 2-1."},
	},
}

type fixture struct {
	server    *Server
	registry  *memory.Registry
	generator *testutils.MockGenerator
	searcher  *testutils.MockSearcher
	speech    *testutils.MockSynthesizer
	realtime  *fakeRealtime
	feed      *realtime.Cache
}

func newFixture() *fixture {
	log := logger.Nop()
	driver := inmemory.NewDriver()

	f := &fixture{
		generator: testutils.NewMockGenerator("Hello from Nexus.", "Hello ", "from ", "Nexus."),
		searcher:  &testutils.MockSearcher{Result: sampleResult},
		speech:    &testutils.MockSynthesizer{Audio: []byte("mp3-bytes")},
		realtime:  &fakeRealtime{now: time.Date(2025, 3, 7, 9, 30, 0, 0, time.Local)},
		feed:      realtime.NewCache(),
	}

	f.registry = memory.NewRegistry(
		memory.NewProfileStore(driver, log),
		memory.NewConversationLog(driver, log, memory.DefaultWindow),
		memory.RegistryConfig{},
		log,
	)

	assembler := assistant.NewContextAssembler(assistant.AssemblerConfig{
		Registry: f.registry,
		Search:   f.searcher,
		Logger:   log,
	})
	orch := assistant.NewOrchestrator(assistant.Config{
		Registry:  f.registry,
		Assembler: assembler,
		Generator: f.generator,
		Extractor: memory.NewHeuristicExtractor(log),
		Logger:    log,
	})

	var err error
	f.server, err = NewServer(Config{
		ListenAddr:   ":0",
		CORSOrigins:  "http://localhost:3000",
		Orchestrator: orch,
		Search:       f.searcher,
		Realtime:     f.realtime,
		Feed:         f.feed,
		Speech:       f.speech,
		Storage:      "memory",
		FeedInterval: 10 * time.Millisecond,
		Logger:       log,
	})
	Expect(err).NotTo(HaveOccurred())
	f.server.now = func() time.Time { return f.realtime.now }
	return f
}

// do sends a request through the fiber app and returns the status and body.
func (f *fixture) do(method, target, body string) (int, string) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.app.Test(req, 5000)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp.StatusCode, string(raw)
}

// doJSON is do with the body decoded into out.
func (f *fixture) doJSON(method, target, body string, out any) int {
	status, raw := f.do(method, target, body)
	Expect(json.Unmarshal([]byte(raw), out)).To(Succeed(), raw)
	return status
}

