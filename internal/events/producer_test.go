package events

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", Ordered, func() {
	Context("write", func() {
		It("writes succsessfully", func() {
			w := newTestWriter()
			kp := NewEventProducer(w)

			msg := []byte("msg1")
			err := kp.Write(context.TODO(), "kind1", bytes.NewReader(msg))
			Expect(err).To(BeNil())
			Eventually(w.Len).WithTimeout(time.Second).Should(Equal(1))
			Expect(w.At(0).Context.GetType()).To(Equal("kind1"))

			msg = []byte("msg2")
			err = kp.Write(context.TODO(), "kind2", bytes.NewReader(msg))
			Expect(err).To(BeNil())

			Eventually(w.Len).WithTimeout(time.Second).Should(Equal(2))
			Expect(w.At(1).Context.GetType()).To(Equal("kind2"))
			Expect(w.Topics()).To(ConsistOf(defaultTopic, defaultTopic))

			Expect(kp.Close()).To(Succeed())
			Expect(w.closed).To(BeTrue())
		})

		It("keeps the order of events", func() {
			w := newTestWriter()
			kp := NewEventProducer(w, WithOutputTopic("profiler"))

			for i := 0; i < 50; i++ {
				Expect(kp.Write(context.TODO(), ProcessedMessageKind, bytes.NewReader([]byte{byte(i)}))).To(Succeed())
			}
			Expect(kp.Close()).To(Succeed())

			Expect(w.Len()).To(Equal(50))
			for i := 0; i < 50; i++ {
				Expect(w.At(i).Data()).To(Equal([]byte{byte(i)}))
			}
			Expect(w.Topics()[0]).To(Equal("profiler"))
		})

		It("writes submission events as json", func() {
			w := newTestWriter()
			kp := NewEventProducer(w, WithSource("test"))

			id := uuid.New()
			err := kp.WriteSubmissionEvent(context.TODO(), FailedMessageKind, SubmissionEvent{
				SubmissionID: id,
				Status:       "failed",
				ProcessedAt:  time.Now(),
				Error:        "model call failed",
			})
			Expect(err).To(BeNil())
			Expect(kp.Close()).To(Succeed())

			Expect(w.Len()).To(Equal(1))
			e := w.At(0)
			Expect(e.Source()).To(Equal("test"))
			Expect(e.Type()).To(Equal(FailedMessageKind))

			var ev SubmissionEvent
			Expect(json.Unmarshal(e.Data(), &ev)).To(Succeed())
			Expect(ev.SubmissionID).To(Equal(id))
			Expect(ev.Error).To(Equal("model call failed"))
		})
	})
})

type testwriter struct {
	lock     sync.Mutex
	messages []cloudevents.Event
	topics   []string
	closed   bool
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.messages = append(t.messages, e)
	t.topics = append(t.topics, topic)
	return nil
}

func (t *testwriter) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.messages)
}

func (t *testwriter) At(i int) cloudevents.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.messages[i]
}

func (t *testwriter) Topics() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]string{}, t.topics...)
}

func (t *testwriter) Close(_ context.Context) error {
	t.closed = true
	return nil
}
