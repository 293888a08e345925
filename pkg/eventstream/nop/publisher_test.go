package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/eventstream"
	"github.com/Yash3561/Nexus/pkg/eventstream/nop"
	"github.com/Yash3561/Nexus/pkg/logger"
)

var _ = Describe("Publisher", func() {
	var p *nop.Publisher

	BeforeEach(func() {
		p = nop.NewPublisher(logger.Nop())
	})

	It("returns ErrNilEvent for nil events", func() {
		err := p.Publish(context.Background(), eventstream.TopicExchanges, nil)
		Expect(err).To(MatchError(eventstream.ErrNilEvent))
	})

	It("accepts non-nil events", func() {
		ev, err := eventstream.NewEnvelope(eventstream.EventTypeAlert, "test", map[string]string{"message": "hi"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Publish(context.Background(), eventstream.TopicAlerts, ev)).To(Succeed())
	})

	It("closes successfully", func() {
		Expect(p.Close()).To(Succeed())
	})
})
