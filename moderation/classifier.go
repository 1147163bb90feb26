//go:generate go run go.uber.org/mock/mockgen -source=classifier.go -destination=../mocks/mock_classifier.go -package=mocks
package moderation

import "context"

type Label string

const (
	LabelClean Label = "CLEAN"
	LabelToxic Label = "TOXIC"
)

type Classification struct {
	Label    Label
	Score    float64
	Feedback []string
}

// Classifier is the toxicity oracle. The production model lives outside this
// repository; LexiconClassifier is the local implementation used by default.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}
