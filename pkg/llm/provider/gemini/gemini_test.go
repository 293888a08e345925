package gemini_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/llm/provider/gemini"
)

var _ = Describe("Generator", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		gen      *gemini.Generator
		ctx      context.Context
		lastPath string
		lastReq  map[string]any
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			lastPath = r.URL.Path
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &lastReq)).To(Succeed())
			handler(w, r)
		}))

		var err error
		gen, err = gemini.New(ctx, gemini.Config{APIKey: "test-key", BaseURL: server.URL + "/"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires an API key", func() {
		_, err := gemini.New(ctx, gemini.Config{})
		Expect(err).To(MatchError(llm.ErrNotConfigured))
	})

	Describe("Generate", func() {
		It("sends the rendered prompt and joins candidate parts", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"Ava"}]},"finishReason":"STOP"}],
"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":2,"totalTokenCount":7}}`)
			}

			resp, err := gen.Generate(ctx, llm.Prompt{System: "SYS", User: "hi"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Text).To(Equal("Hello Ava"))
			Expect(resp.Confidence).To(Equal(0.95))
			Expect(resp.Model).To(Equal("gemini-2.5-flash"))
			Expect(resp.Usage.PromptTokens).To(Equal(5))
			Expect(lastPath).To(HaveSuffix("gemini-2.5-flash:generateContent"))

			raw, err := json.Marshal(lastReq)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`SYS\n\nUser: hi\n\nNEXUS:`))
		})

		It("reports a response without candidates", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"candidates":[]}`)
			}

			_, err := gen.Generate(ctx, llm.Prompt{User: "hi"})
			Expect(err).To(MatchError(llm.ErrNoCandidates))
		})

		It("surfaces API errors", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`)
			}

			_, err := gen.Generate(ctx, llm.Prompt{User: "hi"})
			Expect(err).To(MatchError(ContainSubstring("gemini generate")))
		})
	})

	Describe("GenerateStream", func() {
		It("yields each streamed candidate", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				for _, piece := range []string{"Good ", "morning"} {
					fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\n\n", piece)
				}
			}

			seq, err := gen.GenerateStream(ctx, llm.Prompt{User: "hi"})
			Expect(err).NotTo(HaveOccurred())

			var pieces []string
			for chunk, err := range seq {
				Expect(err).NotTo(HaveOccurred())
				pieces = append(pieces, chunk)
			}
			Expect(strings.Join(pieces, "")).To(Equal("Good morning"))
			Expect(lastPath).To(HaveSuffix(":streamGenerateContent"))
		})
	})
})
