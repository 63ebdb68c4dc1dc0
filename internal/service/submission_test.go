package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/policylens/survey-profiler/internal/config"
	"github.com/policylens/survey-profiler/internal/queue"
	"github.com/policylens/survey-profiler/internal/service"
	"github.com/policylens/survey-profiler/internal/store"
	"github.com/policylens/survey-profiler/internal/store/model"
	"github.com/policylens/survey-profiler/internal/worker"
)

type brokenQueue struct {
	queue.Queue
}

func (brokenQueue) Send(context.Context, queue.Payload) (int64, error) {
	return 0, errors.New("queue unavailable")
}

type stubRunner struct {
	result *worker.BatchResult
}

func (s stubRunner) RunBatch(context.Context) (*worker.BatchResult, error) {
	return s.result, nil
}

var _ = Describe("submission service", func() {
	var (
		s   store.Store
		db  *gorm.DB
		q   queue.Queue
		srv *service.SubmissionService
		ctx context.Context
	)

	BeforeEach(func() {
		cfg := config.NewDefault()
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

		var err error
		db, err = store.InitDB(cfg)
		Expect(err).To(BeNil())
		s = store.NewStore(db)
		ctx = context.TODO()
		Expect(s.InitialMigration(ctx)).To(Succeed())
		Expect(s.Seed(ctx, model.QuestionList{
			{ID: 1, Category: "privacy", Prompt: "p1", Forward: true, Weight: 1},
			{ID: 2, Category: "autonomy", Prompt: "p2", Forward: true, Weight: 1},
		})).To(Succeed())

		q = queue.NewTableQueue(s.QueueMessage(), queue.DefaultName)
		srv = service.NewSubmissionService(s, q, nil)
	})

	AfterEach(func() {
		_ = s.Close()
	})

	Context("create", func() {
		It("stores a pending submission and enqueues it", func() {
			sub, err := srv.CreateSubmission(ctx, model.Responses{1: {Rating: 4}, 2: {Rating: 1}})
			Expect(err).To(BeNil())
			Expect(sub.Status).To(Equal(model.SubmissionStatusPending))

			stored, err := s.Submission().Get(ctx, sub.ID)
			Expect(err).To(BeNil())
			Expect(stored.Responses.Data).To(HaveLen(2))

			items, err := q.Claim(ctx, 5, time.Minute)
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(1))
			payload, err := items[0].Decode()
			Expect(err).To(BeNil())
			Expect(payload.SubmissionID).To(Equal(sub.ID))
			Expect(payload.Responses[1].Rating).To(Equal(4))
		})

		It("rejects an empty submission", func() {
			_, err := srv.CreateSubmission(ctx, model.Responses{})
			var emptyErr *service.ErrEmptySubmission
			Expect(errors.As(err, &emptyErr)).To(BeTrue())
		})

		It("rejects unknown questions", func() {
			_, err := srv.CreateSubmission(ctx, model.Responses{1: {Rating: 4}, 9: {Rating: 2}})
			var unknownErr *service.ErrUnknownQuestion
			Expect(errors.As(err, &unknownErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("[9]"))
		})

		It("rolls back the submission when the queue refuses the item", func() {
			srv = service.NewSubmissionService(s, brokenQueue{Queue: q}, nil)
			_, err := srv.CreateSubmission(ctx, model.Responses{1: {Rating: 4}})
			Expect(err).NotTo(BeNil())

			var count int64
			Expect(db.Model(&model.Submission{}).Count(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
		})
	})

	Context("get", func() {
		It("maps a missing submission to not found", func() {
			_, err := srv.GetSubmission(ctx, uuid.New())
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Context("list", func() {
		It("filters by status", func() {
			for i := 0; i < 3; i++ {
				_, err := srv.CreateSubmission(ctx, model.Responses{1: {Rating: 3}})
				Expect(err).To(BeNil())
			}
			_, err := s.Submission().Create(ctx, model.Submission{
				ID:        uuid.New(),
				Status:    model.SubmissionStatusFailed,
				Responses: model.MakeJSONField(model.Responses{}),
			})
			Expect(err).To(BeNil())

			pending, err := srv.ListSubmissions(ctx, "pending", 0, 0)
			Expect(err).To(BeNil())
			Expect(pending).To(HaveLen(3))

			all, err := srv.ListSubmissions(ctx, "", 2, 0)
			Expect(err).To(BeNil())
			Expect(all).To(HaveLen(2))
		})
	})

	Context("process", func() {
		It("requires a runner", func() {
			_, err := srv.ProcessBatch(ctx)
			Expect(err).To(MatchError(worker.ErrNotConfigured))
		})

		It("returns the runner's result", func() {
			srv = service.NewSubmissionService(s, q, stubRunner{result: &worker.BatchResult{Processed: 2}})
			result, err := srv.ProcessBatch(ctx)
			Expect(err).To(BeNil())
			Expect(result.Processed).To(Equal(2))
		})
	})
})
