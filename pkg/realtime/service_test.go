package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/realtime"
)

var fixedNow = time.Date(2025, time.March, 7, 14, 5, 0, 0, time.Local)

const forecastBody = `{
	"current": {
		"temperature_2m": 71.6,
		"relative_humidity_2m": 48,
		"apparent_temperature": 70.2,
		"weather_code": 2,
		"wind_speed_10m": 8.4
	}
}`

var _ = Describe("TimeInfo", func() {
	It("formats the date and time", func() {
		ti := realtime.NewTimeInfo(fixedNow)
		Expect(ti.Date).To(Equal("Friday, March 07, 2025"))
		Expect(ti.Time).To(Equal("02:05 PM"))
		Expect(ti.DayOfWeek).To(Equal("Friday"))
		Expect(ti.Month).To(Equal("March"))
		Expect(ti.Year).To(Equal(2025))
		Expect(ti.Formatted).To(Equal("Friday, March 07, 2025 at 02:05 PM"))
	})
})

var _ = Describe("Condition", func() {
	It("maps known WMO codes", func() {
		Expect(realtime.Condition(0)).To(Equal("Clear sky"))
		Expect(realtime.Condition(99)).To(Equal("Thunderstorm with heavy hail"))
	})

	It("reports unknown codes", func() {
		Expect(realtime.Condition(42)).To(Equal("Unknown"))
	})
})

var _ = Describe("Service", func() {
	var (
		weather  *httptest.Server
		news     *httptest.Server
		weatherH http.HandlerFunc
		newsH    http.HandlerFunc
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		weatherH = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(forecastBody))
		}
		newsH = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
		}
		weather = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { weatherH(w, r) }))
		news = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { newsH(w, r) }))
		DeferCleanup(weather.Close)
		DeferCleanup(news.Close)
	})

	newService := func(newsKey string) *realtime.Service {
		return realtime.NewService(realtime.Config{
			City:       "New York",
			Latitude:   40.7128,
			Longitude:  -74.006,
			NewsAPIKey: newsKey,
			WeatherURL: weather.URL,
			NewsURL:    news.URL,
			Now:        func() time.Time { return fixedNow },
		}, logger.Nop())
	}

	Describe("Weather", func() {
		It("queries the default location in imperial units", func() {
			var query map[string][]string
			weatherH = func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				_, _ = w.Write([]byte(forecastBody))
			}

			_, err := newService("").Weather(ctx, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(HaveKeyWithValue("latitude", []string{"40.7128"}))
			Expect(query).To(HaveKeyWithValue("longitude", []string{"-74.006"}))
			Expect(query).To(HaveKeyWithValue("temperature_unit", []string{"fahrenheit"}))
			Expect(query).To(HaveKeyWithValue("wind_speed_unit", []string{"mph"}))
			Expect(query["current"][0]).To(ContainSubstring("weather_code"))
		})

		It("formats the report", func() {
			w, err := newService("").Weather(ctx, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(*w).To(Equal(realtime.Weather{
				Location:    "New York",
				Condition:   "Partly cloudy",
				Temperature: "72°F",
				FeelsLike:   "70°F",
				Humidity:    "48%",
				Wind:        "8 mph",
			}))
		})

		It("uses explicit coordinates when given", func() {
			var lat string
			weatherH = func(w http.ResponseWriter, r *http.Request) {
				lat = r.URL.Query().Get("latitude")
				_, _ = w.Write([]byte(forecastBody))
			}
			_, err := newService("").Weather(ctx, 51.5, -0.12)
			Expect(err).NotTo(HaveOccurred())
			Expect(lat).To(Equal("51.5"))
		})

		It("fails on an upstream error", func() {
			weatherH = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}
			_, err := newService("").Weather(ctx, 0, 0)
			Expect(err).To(MatchError(realtime.ErrUnavailable))
		})

		It("fails when the response has no current block", func() {
			weatherH = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			}
			_, err := newService("").Weather(ctx, 0, 0)
			Expect(err).To(MatchError(realtime.ErrUnavailable))
		})
	})

	Describe("NewsHeadlines", func() {
		It("returns a simulated payload without a key", func() {
			newsH = func(w http.ResponseWriter, _ *http.Request) {
				Fail("unexpected request")
			}
			n, err := newService("").NewsHeadlines(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Mock).To(BeTrue())
			Expect(n.Category).To(Equal("general"))
			Expect(n.Headlines).To(BeEmpty())
			Expect(n.Message).To(ContainSubstring("no API key"))
		})

		It("returns at most five titled headlines", func() {
			var query map[string][]string
			newsH = func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				_, _ = w.Write([]byte(`{"status":"ok","articles":[
					{"title":"One","source":{"name":"A"}},
					{"title":"","source":{"name":"skip"}},
					{"title":"Two","source":{"name":"B"}},
					{"title":"Three","source":{"name":"C"}},
					{"title":"Four","source":{"name":"D"}},
					{"title":"Five","source":{"name":"E"}},
					{"title":"Six","source":{"name":"F"}}
				]}`))
			}

			n, err := newService("news-key").NewsHeadlines(ctx, "technology")
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(HaveKeyWithValue("apiKey", []string{"news-key"}))
			Expect(query).To(HaveKeyWithValue("category", []string{"technology"}))
			Expect(query).To(HaveKeyWithValue("pageSize", []string{"5"}))
			Expect(n.Mock).To(BeFalse())
			Expect(n.Count).To(Equal(5))
			Expect(n.Headlines[0]).To(Equal(realtime.Headline{Title: "One", Source: "A"}))
			Expect(n.Headlines[4].Title).To(Equal("Five"))
		})

		It("surfaces the provider's error message", func() {
			newsH = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"status":"error","message":"Your API key is invalid."}`))
			}
			_, err := newService("bad").NewsHeadlines(ctx, "general")
			Expect(err).To(MatchError(ContainSubstring("Your API key is invalid.")))
		})
	})

	Describe("BuildContext", func() {
		It("includes time and weather", func() {
			out := newService("").BuildContext(ctx)
			Expect(out).To(Equal("Current time: Friday, March 07, 2025 at 02:05 PM\n" +
				"Weather in New York: Partly cloudy, 72°F (feels like 70°F)"))
		})

		It("omits weather when it is unavailable", func() {
			weatherH = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}
			Expect(newService("").BuildContext(ctx)).To(Equal("Current time: Friday, March 07, 2025 at 02:05 PM"))
		})
	})
})
