package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/policylens/survey-profiler/internal/store"
	"github.com/policylens/survey-profiler/internal/store/model"
)

var _ = Describe("Store", Ordered, func() {
	var s store.Store

	BeforeAll(func() {
		s, _ = newTestDB()
	})

	AfterAll(func() {
		s.Close()
	})

	Context("transaction", func() {
		It("commits a submission", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			id := uuid.New()
			_, err = s.Submission().Create(ctx, model.Submission{
				ID:        id,
				Responses: model.MakeJSONField(model.Responses{1: {Rating: 3}}),
			})
			Expect(err).To(BeNil())

			_, err = store.Commit(ctx)
			Expect(err).To(BeNil())

			sub, err := s.Submission().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(sub.Status).To(Equal(model.SubmissionStatusPending))
		})

		It("rolls back a submission", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			id := uuid.New()
			_, err = s.Submission().Create(ctx, model.Submission{
				ID:        id,
				Responses: model.MakeJSONField(model.Responses{1: {Rating: 3}}),
			})
			Expect(err).To(BeNil())

			_, err = store.Rollback(ctx)
			Expect(err).To(BeNil())

			_, err = s.Submission().Get(context.TODO(), id)
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})

		It("rolls back every write when the callback fails", func() {
			id := uuid.New()
			boom := errors.New("boom")

			err := store.WithTransaction(context.TODO(), s, func(ctx context.Context) error {
				if _, err := s.Submission().Create(ctx, model.Submission{
					ID:        id,
					Responses: model.MakeJSONField(model.Responses{1: {Rating: 3}}),
				}); err != nil {
					return err
				}
				if _, err := s.QueueMessage().Send(ctx, "tx-test", []byte(`{}`)); err != nil {
					return err
				}
				return boom
			})
			Expect(err).To(MatchError(boom))

			_, err = s.Submission().Get(context.TODO(), id)
			Expect(err).To(Equal(store.ErrRecordNotFound))

			msgs, err := s.QueueMessage().Read(context.TODO(), "tx-test", 10, time.Second)
			Expect(err).To(BeNil())
			Expect(msgs).To(BeEmpty())
		})

		It("reports a second commit", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			Expect(store.FromContext(ctx)).NotTo(BeNil())

			ctx, err = store.Commit(ctx)
			Expect(err).To(BeNil())
			Expect(store.FromContext(ctx)).To(BeNil())

			_, err = store.Commit(ctx)
			Expect(err).To(BeNil())
		})
	})

	Context("seed and statistics", func() {
		It("upserts the question catalog", func() {
			err := s.Seed(context.TODO(), model.QuestionList{
				{ID: 2, Category: "Privacy", Prompt: "second", Forward: false, Weight: 2},
				{ID: 1, Category: "Privacy", Prompt: "first", Forward: true, Weight: 1},
			})
			Expect(err).To(BeNil())

			err = s.Seed(context.TODO(), model.QuestionList{
				{ID: 2, Category: "Privacy", Prompt: "second, reworded", Forward: false, Weight: 2},
			})
			Expect(err).To(BeNil())

			questions, err := s.Question().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(questions).To(HaveLen(2))
			Expect(questions[0].ID).To(Equal(int64(1)))
			Expect(questions[1].Prompt).To(Equal("second, reworded"))
			Expect(questions[1].Forward).To(BeFalse())
		})

		It("counts submissions by status", func() {
			stats, err := s.Statistics(context.TODO())
			Expect(err).To(BeNil())
			Expect(stats.Total).To(BeNumerically(">=", 1))
			Expect(stats.ByStatus[model.SubmissionStatusPending]).To(BeNumerically(">=", 1))
		})
	})
})
