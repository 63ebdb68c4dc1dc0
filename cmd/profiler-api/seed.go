package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/policylens/survey-profiler/internal/store/model"
)

var questionsFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the question catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		if questionsFile == "" {
			questionsFile = cfg.Service.QuestionsFile
		}

		questions, err := loadQuestions(questionsFile)
		if err != nil {
			return err
		}

		s, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Seed(context.Background(), questions); err != nil {
			return fmt.Errorf("seeding questions: %w", err)
		}

		zap.S().Infof("seeded %d questions from %s", len(questions), questionsFile)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&questionsFile, "file", "f", "", "Path to the question catalog (yaml)")
}

type catalogEntry struct {
	ID       int64    `json:"id"`
	Category string   `json:"category"`
	Prompt   string   `json:"prompt"`
	Forward  *bool    `json:"forward,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
}

type catalogFile struct {
	Questions []catalogEntry `json:"questions"`
}

// loadQuestions reads a catalog file. forward defaults to true and weight to 1.
func loadQuestions(path string) (model.QuestionList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question catalog: %w", err)
	}
	return parseQuestions(data)
}

func parseQuestions(data []byte) (model.QuestionList, error) {
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing question catalog: %w", err)
	}

	seen := make(map[int64]struct{}, len(catalog.Questions))
	questions := make(model.QuestionList, 0, len(catalog.Questions))
	for _, e := range catalog.Questions {
		if e.ID <= 0 {
			return nil, fmt.Errorf("question %q: id must be positive", e.Prompt)
		}
		if e.Category == "" {
			return nil, fmt.Errorf("question %d: category is required", e.ID)
		}
		if _, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("question %d: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}

		q := model.Question{ID: e.ID, Category: e.Category, Prompt: e.Prompt, Forward: true, Weight: 1}
		if e.Forward != nil {
			q.Forward = *e.Forward
		}
		if e.Weight != nil {
			if *e.Weight < 0 {
				return nil, fmt.Errorf("question %d: weight must not be negative", e.ID)
			}
			q.Weight = *e.Weight
		}
		questions = append(questions, q)
	}
	return questions, nil
}
