package realtime_test

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/eventstream"
	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/realtime"
	testutils "github.com/Yash3561/Nexus/pkg/utils/test"
)

var _ = Describe("Producer", func() {
	var (
		upstream *httptest.Server
		pub      *testutils.MockPublisher
		service  *realtime.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		pub = testutils.NewMockPublisher()
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("apiKey") {
				_, _ = w.Write([]byte(`{"status":"ok","articles":[{"title":"A","source":{"name":"S"}},{"title":"B","source":{"name":"S"}}]}`))
				return
			}
			_, _ = w.Write([]byte(forecastBody))
		}))
		DeferCleanup(upstream.Close)
	})

	newService := func(newsKey string) *realtime.Service {
		return realtime.NewService(realtime.Config{
			City:       "New York",
			Latitude:   40.7128,
			Longitude:  -74.006,
			NewsAPIKey: newsKey,
			WeatherURL: upstream.URL,
			NewsURL:    upstream.URL,
			Now:        func() time.Time { return fixedNow },
		}, logger.Nop())
	}

	newProducer := func(chance float64) *realtime.Producer {
		return realtime.NewProducer(service, pub, realtime.ProducerConfig{
			AlertChance: chance,
			Rand:        rand.New(rand.NewPCG(1, 2)),
		}, logger.Nop())
	}

	It("publishes weather and headlines to the updates topic", func() {
		service = newService("news-key")
		sent, err := newProducer(0).Cycle(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(3))

		events := pub.Events()
		Expect(events[0].Topic).To(Equal(eventstream.TopicUpdates))
		Expect(events[0].Event.EventType).To(Equal(eventstream.EventTypeWeather))

		var reading realtime.WeatherReading
		Expect(events[0].Event.Decode(&reading)).To(Succeed())
		Expect(reading.Temperature).To(Equal(71.6))
		Expect(reading.Condition).To(Equal("Partly cloudy"))
		Expect(reading.Location).To(Equal(&realtime.Coordinates{Lat: 40.7128, Lon: -74.006}))

		Expect(events[1].Event.EventType).To(Equal(eventstream.EventTypeNews))
		Expect(events[2].Event.EventType).To(Equal(eventstream.EventTypeNews))
	})

	It("skips headlines without a news key", func() {
		service = newService("")
		sent, err := newProducer(0).Cycle(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(1))
	})

	It("publishes an alert to the alerts topic when the dice say so", func() {
		service = newService("")
		sent, err := newProducer(1).Cycle(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(2))

		alert := pub.Events()[1]
		Expect(alert.Topic).To(Equal(eventstream.TopicAlerts))
		var a realtime.Alert
		Expect(alert.Event.Decode(&a)).To(Succeed())
		Expect(a.Type).To(Equal("alert"))
		Expect(a.Message).NotTo(BeEmpty())
		Expect(a.Severity).To(BeElementOf("low", "medium", "info"))
	})

	It("reports publish failures and keeps going", func() {
		service = newService("news-key")
		pub.Fail = true
		sent, err := newProducer(0).Cycle(ctx)
		Expect(sent).To(Equal(0))
		Expect(err).To(MatchError(testutils.ErrMockPublish))
	})

	It("runs until the context is cancelled", func() {
		service = newService("")
		p := realtime.NewProducer(service, pub, realtime.ProducerConfig{Interval: 10 * time.Millisecond}, logger.Nop())

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error)
		go func() { done <- p.Run(runCtx) }()

		Eventually(func() int { return len(pub.Events()) }).Should(BeNumerically(">=", 2))
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})
})
