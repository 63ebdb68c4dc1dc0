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

var _ = Describe("submission store", Ordered, func() {
	var s store.Store

	BeforeAll(func() {
		s, _ = newTestDB()
	})

	AfterAll(func() {
		s.Close()
	})

	create := func() uuid.UUID {
		explanation := "because"
		sub, err := s.Submission().Create(context.TODO(), model.Submission{
			ID: uuid.New(),
			Responses: model.MakeJSONField(model.Responses{
				1: {Rating: 4},
				2: {Rating: 2, Explanation: &explanation},
			}),
		})
		Expect(err).To(BeNil())
		return sub.ID
	}

	Context("create", func() {
		It("stores responses as json", func() {
			id := create()

			sub, err := s.Submission().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(sub.Responses.Data).To(HaveLen(2))
			Expect(sub.Responses.Data[1].Rating).To(Equal(4))
			Expect(*sub.Responses.Data[2].Explanation).To(Equal("because"))
			Expect(sub.SubmittedAt.IsZero()).To(BeFalse())
		})

		It("refuses duplicated ids", func() {
			id := create()
			_, err := s.Submission().Create(context.TODO(), model.Submission{
				ID:        id,
				Responses: model.MakeJSONField(model.Responses{}),
			})
			Expect(err).To(Equal(store.ErrDuplicateKey))
		})
	})

	Context("update status", func() {
		It("writes terminal fields", func() {
			id := create()
			now := time.Now()
			summary := "Here is what your answers say."

			err := s.Submission().UpdateStatus(context.TODO(), id, store.SubmissionUpdate{
				Status:      model.SubmissionStatusProcessing,
				AllowedFrom: []model.SubmissionStatus{model.SubmissionStatusPending, model.SubmissionStatusProcessing},
			})
			Expect(err).To(BeNil())

			err = s.Submission().UpdateStatus(context.TODO(), id, store.SubmissionUpdate{
				Status:      model.SubmissionStatusProcessed,
				AllowedFrom: []model.SubmissionStatus{model.SubmissionStatusProcessing},
				ProcessedAt: &now,
				Summary:     &summary,
				Scores:      []byte(`{"privacy":"high","privacy_score":4}`),
			})
			Expect(err).To(BeNil())

			sub, err := s.Submission().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(sub.Status).To(Equal(model.SubmissionStatusProcessed))
			Expect(*sub.Summary).To(Equal(summary))
			Expect(string(sub.Scores)).To(ContainSubstring("privacy_score"))
			Expect(sub.ProcessedAt).ToNot(BeNil())
		})

		It("refuses to leave a terminal status", func() {
			id := create()
			msg := "boom"

			err := s.Submission().UpdateStatus(context.TODO(), id, store.SubmissionUpdate{
				Status:       model.SubmissionStatusFailed,
				ErrorMessage: &msg,
			})
			Expect(err).To(BeNil())

			err = s.Submission().UpdateStatus(context.TODO(), id, store.SubmissionUpdate{
				Status:      model.SubmissionStatusProcessing,
				AllowedFrom: []model.SubmissionStatus{model.SubmissionStatusPending, model.SubmissionStatusProcessing},
			})
			var conflict *store.ErrStatusConflict
			Expect(errors.As(err, &conflict)).To(BeTrue())
			Expect(conflict.Current).To(Equal(model.SubmissionStatusFailed))

			sub, err := s.Submission().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(*sub.ErrorMessage).To(Equal("boom"))
		})

		It("returns not found for unknown submissions", func() {
			err := s.Submission().UpdateStatus(context.TODO(), uuid.New(), store.SubmissionUpdate{
				Status: model.SubmissionStatusProcessing,
			})
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("filters by status", func() {
			id := create()
			Expect(s.Submission().UpdateStatus(context.TODO(), id, store.SubmissionUpdate{
				Status: model.SubmissionStatusProcessing,
			})).To(Succeed())

			subs, err := s.Submission().List(context.TODO(),
				store.NewSubmissionQueryFilter().ByStatus(model.SubmissionStatusProcessing),
				store.NewSubmissionQueryOptions().WithLimit(10))
			Expect(err).To(BeNil())
			Expect(subs).ToNot(BeEmpty())
			for _, sub := range subs {
				Expect(sub.Status).To(Equal(model.SubmissionStatusProcessing))
			}
		})
	})
})
