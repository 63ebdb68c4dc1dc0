package prompt_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/policylens/survey-profiler/internal/prompt"
	"github.com/policylens/survey-profiler/internal/store/model"
)

var _ = Describe("prompt builder", func() {
	var (
		categories = []string{"privacy", "free_speech"}
		scores     = map[string]float64{"privacy": 4, "free_speech": 2.5}
	)

	Context("format responses", func() {
		It("lists answered questions in catalog order", func() {
			why := "  I care about it  "
			questions := []model.Question{
				{ID: 1, Category: "Privacy", Prompt: "Apps should ask before tracking."},
				{ID: 2, Category: "Free Speech", Prompt: "Platforms should moderate less."},
				{ID: 3, Category: "Privacy", Prompt: "Unanswered."},
			}
			text := prompt.FormatResponses(questions, model.Responses{
				2: {Rating: 2},
				1: {Rating: 5, Explanation: &why},
			})

			Expect(text).To(Equal("Question 1 (privacy): Apps should ask before tracking.\n" +
				"Rating: 5\n" +
				"Explanation: I care about it\n" +
				"\n" +
				"Question 2 (free_speech): Platforms should moderate less.\n" +
				"Rating: 2"))
		})
	})

	Context("render", func() {
		It("carries the instructions, categories and scores", func() {
			text := prompt.Render("Question 1 (privacy): ...", categories, scores)

			Expect(text).To(ContainSubstring(prompt.OpeningSentence))
			Expect(text).To(ContainSubstring("Never name"))
			Expect(text).To(ContainSubstring("- privacy: 4.00"))
			Expect(text).To(ContainSubstring("- free_speech: 2.50"))
			Expect(text).To(ContainSubstring(`"protectionist"`))
			Expect(text).To(ContainSubstring(`"progressive"`))
			Expect(text).To(ContainSubstring("```json"))
			Expect(text).To(ContainSubstring(`"privacy_score": 4`))
		})

		It("marks categories without a score", func() {
			text := prompt.Render("", categories, map[string]float64{"privacy": 3})
			Expect(text).To(ContainSubstring("- free_speech: no answers"))
		})

		It("round-trips the rendered schema through Parse", func() {
			card, _, err := prompt.Parse(prompt.Render("answers", categories, scores), categories)
			Expect(err).To(BeNil())
			Expect(card.Categories).To(HaveLen(2))
			Expect(card.Categories[0].Category).To(Equal("privacy"))
			Expect(card.Categories[1].Category).To(Equal("free_speech"))
			for _, c := range card.Categories {
				Expect(c.Band).To(Equal(prompt.BandMedium))
			}
			Expect(card.Protectionist).To(Equal(prompt.Polarity(0)))
			Expect(card.Progressive).To(Equal(prompt.Polarity(0)))
		})
	})

	Context("parse", func() {
		reply := prompt.OpeningSentence + " You value control over your data.\n\n" +
			"```json\n" +
			`{"privacy": "High", "free_speech": "low", "protectionist": 1, "progressive": -1, "privacy_score": 1.0}` +
			"\n```\n"

		It("extracts the scorecard and the summary", func() {
			card, summary, err := prompt.Parse(reply, categories)
			Expect(err).To(BeNil())
			Expect(summary).To(Equal(prompt.OpeningSentence + " You value control over your data."))

			band, ok := card.Band("privacy")
			Expect(ok).To(BeTrue())
			Expect(band).To(Equal(prompt.BandHigh))
			band, _ = card.Band("free_speech")
			Expect(band).To(Equal(prompt.BandLow))
			Expect(card.Protectionist).To(Equal(prompt.Polarity(1)))
			Expect(card.Progressive).To(Equal(prompt.Polarity(-1)))
		})

		It("discards echoed scores in favour of merged ones", func() {
			card, _, err := prompt.Parse(reply, categories)
			Expect(err).To(BeNil())
			Expect(card.Categories[0].Score).To(BeNil())

			card.MergeScores(scores)
			Expect(*card.Categories[0].Score).To(Equal(4.0))
			Expect(*card.Categories[1].Score).To(Equal(2.5))

			raw, err := json.Marshal(card)
			Expect(err).To(BeNil())
			Expect(string(raw)).To(Equal(`{"privacy":"high","privacy_score":4,"free_speech":"low","free_speech_score":2.5,"protectionist":1,"progressive":-1}`))
		})

		It("uses the first fenced block", func() {
			twoBlocks := "Summary.\n```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":0}\n```\n" +
				"```json\n{\"privacy\":\"high\"}\n```"
			card, summary, err := prompt.Parse(twoBlocks, categories)
			Expect(err).To(BeNil())
			band, _ := card.Band("privacy")
			Expect(band).To(Equal(prompt.BandLow))
			Expect(summary).To(HavePrefix("Summary."))
		})

		It("accepts quoted polarities", func() {
			text := "```json\n{\"privacy\":\"low\",\"free_speech\":\"medium\",\"protectionist\":\"-1\",\"progressive\":\"1\"}\n```"
			card, summary, err := prompt.Parse(text, categories)
			Expect(err).To(BeNil())
			Expect(summary).To(BeEmpty())
			Expect(card.Protectionist).To(Equal(prompt.Polarity(-1)))
		})

		DescribeTable("accepts fenced block layouts",
			func(text string, wantSummary string) {
				card, summary, err := prompt.Parse(text, categories)
				Expect(err).To(BeNil())
				band, ok := card.Band("privacy")
				Expect(ok).To(BeTrue())
				Expect(band).To(Equal(prompt.BandLow))
				Expect(card.Progressive).To(Equal(prompt.Polarity(1)))
				Expect(summary).To(Equal(wantSummary))
			},
			Entry("block on its own lines",
				"Summary.\n```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":1}\n```",
				"Summary."),
			Entry("block on a single line",
				"Summary. ```json {\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":1}```",
				"Summary."),
			Entry("crlf line endings",
				"Summary.\r\n```json\r\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":1}\r\n```\r\n",
				"Summary."),
			Entry("text on both sides of the block",
				"First paragraph ends.```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":1}\n```Next paragraph.",
				"First paragraph ends.\n\nNext paragraph."),
			Entry("text only after the block",
				"```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":1}\n```\n\n  Closing words.  ",
				"Closing words."),
		)

		DescribeTable("rejects malformed replies",
			func(text string) {
				card, _, err := prompt.Parse(text, categories)
				Expect(card).To(BeNil())
				Expect(errors.Is(err, prompt.ErrMalformedModelOutput)).To(BeTrue())
			},
			Entry("no fenced block", `Summary only. {"privacy":"low"}`),
			Entry("block not labeled json", "```\n{\"privacy\":\"low\"}\n```"),
			Entry("invalid json", "```json\n{privacy: low}\n```"),
			Entry("missing category", "```json\n{\"privacy\":\"low\",\"protectionist\":0,\"progressive\":0}\n```"),
			Entry("unknown band", "```json\n{\"privacy\":\"extreme\",\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":0}\n```"),
			Entry("band not a string", "```json\n{\"privacy\":3,\"free_speech\":\"low\",\"protectionist\":0,\"progressive\":0}\n```"),
			Entry("missing polarity", "```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0}\n```"),
			Entry("polarity out of range", "```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":2,\"progressive\":0}\n```"),
			Entry("fractional polarity", "```json\n{\"privacy\":\"low\",\"free_speech\":\"low\",\"protectionist\":0.5,\"progressive\":0}\n```"),
		)
	})
})
