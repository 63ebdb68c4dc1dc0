package scoring_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/policylens/survey-profiler/internal/scoring"
	"github.com/policylens/survey-profiler/internal/store/model"
)

var _ = Describe("scoring engine", func() {
	Context("normalization", func() {
		It("folds case and collapses whitespace", func() {
			Expect(scoring.NormalizeCategory("  Data   Privacy ")).To(Equal("data_privacy"))
			Expect(scoring.NormalizeCategory("PRIVACY")).To(Equal("privacy"))
			Expect(scoring.NormalizeCategory("   ")).To(Equal(""))
		})

		It("lists categories in order of first appearance", func() {
			questions := []model.Question{
				{ID: 1, Category: "Privacy"},
				{ID: 2, Category: "Free Speech"},
				{ID: 3, Category: "privacy"},
				{ID: 4, Category: "Automation"},
			}
			Expect(scoring.Categories(questions)).To(Equal([]string{"privacy", "free_speech", "automation"}))
		})
	})

	Context("compute scores", func() {
		It("weights and reflects ratings", func() {
			questions := []model.Question{
				{ID: 1, Category: "privacy", Forward: true, Weight: 1},
				{ID: 2, Category: "privacy", Forward: false, Weight: 2},
			}
			responses := model.Responses{
				1: {Rating: 4},
				2: {Rating: 2},
			}

			scores := scoring.ComputeScores(questions, responses)
			Expect(scores).To(HaveLen(1))
			Expect(scores["privacy"]).To(BeNumerically("~", 4.0, 1e-9))
		})

		It("leaves categories without answers out", func() {
			questions := []model.Question{
				{ID: 1, Category: "privacy", Forward: true, Weight: 1},
				{ID: 2, Category: "automation", Forward: true, Weight: 1},
			}
			scores := scoring.ComputeScores(questions, model.Responses{1: {Rating: 5}})
			Expect(scores).To(HaveKey("privacy"))
			Expect(scores).ToNot(HaveKey("automation"))
		})

		It("scores zero when the answered questions carry no weight", func() {
			questions := []model.Question{
				{ID: 1, Category: "privacy", Forward: true, Weight: 0},
			}
			scores := scoring.ComputeScores(questions, model.Responses{1: {Rating: 5}})
			Expect(scores).To(HaveKeyWithValue("privacy", 0.0))
		})

		It("ignores ratings outside the scale and unknown questions", func() {
			questions := []model.Question{
				{ID: 1, Category: "privacy", Forward: true, Weight: 1},
				{ID: 2, Category: "privacy", Forward: true, Weight: 1},
			}
			scores := scoring.ComputeScores(questions, model.Responses{
				1:  {Rating: 9},
				2:  {Rating: 3},
				42: {Rating: 1},
			})
			Expect(scores["privacy"]).To(BeNumerically("~", 3.0, 1e-9))
		})

		It("honours a custom scale", func() {
			engine := scoring.NewEngine(scoring.Scale{Min: 1, Max: 7})
			questions := []model.Question{{ID: 1, Category: "privacy", Forward: false, Weight: 1}}
			scores := engine.ComputeScores(questions, model.Responses{1: {Rating: 2}})
			Expect(scores["privacy"]).To(BeNumerically("~", 6.0, 1e-9))
		})

		It("is deterministic", func() {
			questions := []model.Question{
				{ID: 1, Category: "privacy", Forward: true, Weight: 1.5},
				{ID: 2, Category: "automation", Forward: false, Weight: 0.5},
			}
			responses := model.Responses{1: {Rating: 2}, 2: {Rating: 5}}
			Expect(scoring.ComputeScores(questions, responses)).To(Equal(scoring.ComputeScores(questions, responses)))
		})
	})

	Context("properties", func() {
		var (
			rnd        *rand.Rand
			categories = []string{"privacy", "automation", "free speech"}
		)

		BeforeEach(func() {
			rnd = rand.New(rand.NewSource(7))
		})

		randomSurvey := func() ([]model.Question, model.Responses) {
			questions := make([]model.Question, 0, 12)
			responses := model.Responses{}
			for i := int64(1); i <= 12; i++ {
				questions = append(questions, model.Question{
					ID:       i,
					Category: categories[rnd.Intn(len(categories))],
					Forward:  rnd.Intn(2) == 0,
					Weight:   0.1 + rnd.Float64()*3,
				})
				if rnd.Intn(4) != 0 {
					responses[i] = model.RawResponse{Rating: 1 + rnd.Intn(5)}
				}
			}
			return questions, responses
		}

		It("keeps every score within the rating scale", func() {
			for i := 0; i < 200; i++ {
				questions, responses := randomSurvey()
				for _, score := range scoring.ComputeScores(questions, responses) {
					Expect(score).To(BeNumerically(">=", 1.0))
					Expect(score).To(BeNumerically("<=", 5.0))
				}
			}
		})

		It("is symmetric under flipping direction and reflecting ratings", func() {
			for i := 0; i < 200; i++ {
				questions, responses := randomSurvey()

				flipped := make([]model.Question, len(questions))
				for j, q := range questions {
					q.Forward = !q.Forward
					flipped[j] = q
				}
				reflected := model.Responses{}
				for id, r := range responses {
					reflected[id] = model.RawResponse{Rating: scoring.DefaultScale.Reflect(r.Rating)}
				}

				original := scoring.ComputeScores(questions, responses)
				mirrored := scoring.ComputeScores(flipped, reflected)
				Expect(mirrored).To(HaveLen(len(original)))
				for category, score := range original {
					Expect(mirrored[category]).To(BeNumerically("~", score, 1e-9))
				}
			}
		})
	})
})
