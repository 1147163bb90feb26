package moderation_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	apperrors "alumnet/errors"
	"alumnet/mocks"
	"alumnet/moderation"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_Gate_Passes_Clean_Content(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), "hello").
		Return(moderation.Classification{Label: moderation.LabelClean}, nil)

	gate := moderation.NewGate(classifier, time.Second, slog.Default())
	req.NoError(gate.Check(context.Background(), "hello"))
}

func Test_Gate_Blocks_Toxic_Content(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).
		Return(moderation.Classification{Label: moderation.LabelToxic, Score: 0.9}, nil)

	gate := moderation.NewGate(classifier, time.Second, slog.Default())
	err := gate.Check(context.Background(), "some insult")
	req.ErrorIs(err, apperrors.ErrModerationRejected)
}

func Test_Gate_Fails_Closed_On_Classifier_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).
		Return(moderation.Classification{}, fmt.Errorf("model unreachable"))

	gate := moderation.NewGate(classifier, time.Second, slog.Default())
	err := gate.Check(context.Background(), "anything")
	req.ErrorIs(err, apperrors.ErrModerationUnavailable)
}

func Test_Gate_Fails_Closed_On_Timeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (moderation.Classification, error) {
			<-ctx.Done()
			return moderation.Classification{}, ctx.Err()
		})

	gate := moderation.NewGate(classifier, 10*time.Millisecond, slog.Default())
	err := gate.Check(context.Background(), "anything")
	req.ErrorIs(err, apperrors.ErrModerationUnavailable)
}

func Test_Gate_Preview_Is_Advisory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Classify(gomock.Any(), "draft").
		Return(moderation.Classification{Label: moderation.LabelToxic, Score: 0.7}, nil)

	gate := moderation.NewGate(classifier, time.Second, slog.Default())
	result, err := gate.Preview(context.Background(), "draft")
	req.NoError(err)
	req.Equal(moderation.LabelToxic, result.Label)
}
