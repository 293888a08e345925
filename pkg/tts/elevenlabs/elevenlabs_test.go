package elevenlabs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/tts"
	"github.com/Yash3561/Nexus/pkg/tts/elevenlabs"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Header.Get("xi-api-key")).To(Equal("el-key"))
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	newClient := func(key string) *elevenlabs.Client {
		return elevenlabs.NewClient(elevenlabs.Config{APIKey: key, BaseURL: server.URL}, logger.Nop())
	}

	Describe("TextToSpeech", func() {
		It("reports ErrNotConfigured without a key", func() {
			c := newClient("")
			Expect(c.Configured()).To(BeFalse())
			_, err := c.TextToSpeech(ctx, "hello")
			Expect(err).To(MatchError(tts.ErrNotConfigured))
		})

		It("posts text with the default voice and model", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/v1/text-to-speech/" + elevenlabs.DefaultVoiceID))
				Expect(r.URL.Query().Get("output_format")).To(Equal("mp3_44100_128"))

				var body map[string]string
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body).To(Equal(map[string]string{"text": "hello there", "model_id": "eleven_turbo_v2_5"}))

				w.Header().Set("Content-Type", "audio/mpeg")
				_, _ = w.Write([]byte("ID3-fake-mp3"))
			}

			audio, err := newClient("el-key").TextToSpeech(ctx, "hello there")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(audio)).To(Equal("ID3-fake-mp3"))
		})

		It("returns the upstream error body", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"detail":"quota_exceeded"}`))
			}
			_, err := newClient("el-key").TextToSpeech(ctx, "hi")
			Expect(err).To(MatchError(ContainSubstring("quota_exceeded")))
		})
	})

	Describe("Voices", func() {
		It("maps the voice list", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v1/voices"))
				_, _ = w.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Adam","category":"premade"}]}`))
			}

			voices, err := newClient("el-key").Voices(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(voices).To(Equal([]tts.Voice{{ID: "v1", Name: "Adam", Category: "premade"}}))
		})

		It("reports ErrNotConfigured without a key", func() {
			_, err := newClient("").Voices(ctx)
			Expect(err).To(MatchError(tts.ErrNotConfigured))
		})
	})
})
