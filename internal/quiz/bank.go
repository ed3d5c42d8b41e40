package quiz

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Question is one multiple-choice question with a single correct option
type Question struct {
	Text        string   `yaml:"question" json:"question"`
	Options     []string `yaml:"options" json:"options"`
	Correct     int      `yaml:"correct" json:"-"`
	Explanation string   `yaml:"explanation" json:"-"`
}

// Bank is an ordered question list
type Bank []Question

// ParseBank decodes and validates a YAML question list
func ParseBank(data []byte) (Bank, error) {
	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return bank, nil
}

// DefaultBank returns the embedded question bank
func DefaultBank() (Bank, error) {
	return ParseBank(defaultQuestions)
}

// Validate checks every question has options and an in-range answer
func (b Bank) Validate() error {
	if len(b) == 0 {
		return errors.New("question bank is empty")
	}
	for i, q := range b {
		if q.Text == "" {
			return fmt.Errorf("question %d: empty text", i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: need at least 2 options, got %d", i, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("question %d: correct index %d out of range", i, q.Correct)
		}
	}
	return nil
}
