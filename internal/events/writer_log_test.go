package events

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("log writer", func() {
	var logs *observer.ObservedLogs

	BeforeEach(func() {
		var core zapcore.Core
		core, logs = observer.New(zapcore.InfoLevel)
		DeferCleanup(zap.ReplaceGlobals(zap.New(core)))
	})

	It("logs the submission carried by a processed event", func() {
		w := NewLogWriter()
		kp := NewEventProducer(w, WithOutputTopic("profiler"))

		id := uuid.New()
		Expect(kp.WriteSubmissionEvent(context.TODO(), ProcessedMessageKind, SubmissionEvent{
			SubmissionID: id,
			Status:       "processed",
			ProcessedAt:  time.Now(),
			Scores:       map[string]float64{"privacy": 4},
		})).To(Succeed())
		Expect(kp.Close()).To(Succeed())

		entries := logs.FilterMessage("submission event").All()
		Expect(entries).To(HaveLen(1))
		fields := entries[0].ContextMap()
		Expect(entries[0].LoggerName).To(Equal("event_log_writer"))
		Expect(fields["submission_id"]).To(Equal(id.String()))
		Expect(fields["status"]).To(Equal("processed"))
		Expect(fields["type"]).To(Equal(ProcessedMessageKind))
		Expect(fields["topic"]).To(Equal("profiler"))
		Expect(fields).To(HaveKey("scores"))
		Expect(fields).NotTo(HaveKey("error_message"))
	})

	It("logs the error of a failed event", func() {
		w := NewLogWriter()
		kp := NewEventProducer(w)

		id := uuid.New()
		Expect(kp.WriteSubmissionEvent(context.TODO(), FailedMessageKind, SubmissionEvent{
			SubmissionID: id,
			Status:       "failed",
			ProcessedAt:  time.Now(),
			Error:        "model call failed",
		})).To(Succeed())
		Expect(kp.Close()).To(Succeed())

		entries := logs.FilterField(zap.String("submission_id", id.String())).All()
		Expect(entries).To(HaveLen(1))
		fields := entries[0].ContextMap()
		Expect(fields["status"]).To(Equal("failed"))
		Expect(fields["error_message"]).To(Equal("model call failed"))
		Expect(fields["topic"]).To(Equal(defaultTopic))
		Expect(fields).NotTo(HaveKey("scores"))
	})

	It("warns about data that is not a submission event", func() {
		e := cloudevents.NewEvent()
		e.SetID("1")
		e.SetType("other")
		e.SetSource(defaultSource)
		Expect(e.SetData(cloudevents.TextPlain, "plain text")).To(Succeed())

		Expect(NewLogWriter().Write(context.TODO(), "profiler", e)).To(Succeed())

		entries := logs.FilterMessage("event data is not a submission event").All()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Level).To(Equal(zapcore.WarnLevel))
		Expect(entries[0].ContextMap()["event_id"]).To(Equal("1"))
		Expect(logs.FilterMessage("submission event").Len()).To(BeZero())
	})
})
