package servecmder

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/logger"
)

type fakeFeed struct {
	err error
}

func (f *fakeFeed) Run(context.Context) error { return f.err }

var _ = Describe("runFeed", func() {
	var (
		buf bytes.Buffer
		ctx context.Context
	)

	BeforeEach(func() {
		buf.Reset()
		ctx = context.Background()
	})

	It("logs a broken event bus instead of stopping the server", func() {
		runFeed(ctx, &fakeFeed{err: errors.New("broker unreachable")}, logger.New(logger.WithWriter(&buf)))

		Expect(buf.String()).To(ContainSubstring("feed consumer stopped"))
		Expect(buf.String()).To(ContainSubstring("broker unreachable"))
	})

	It("stays quiet when the feed ends with the context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		runFeed(cctx, &fakeFeed{err: context.Canceled}, logger.New(logger.WithWriter(&buf)))

		Expect(buf.String()).To(BeEmpty())
	})

	It("stays quiet on a clean exit", func() {
		runFeed(ctx, &fakeFeed{}, logger.New(logger.WithWriter(&buf)))

		Expect(buf.String()).To(BeEmpty())
	})
})
