package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/transform"
)

func prediction(t *testing.T, fields map[string]any) *aiplatformpb.PredictResponse {
	t.Helper()
	value, err := structpb.NewValue(fields)
	require.NoError(t, err)
	return &aiplatformpb.PredictResponse{Predictions: []*structpb.Value{value}}
}

func TestImagenBackend(t *testing.T) {
	ctx := context.Background()
	subject := pngBytes(t, 4, 4)
	out := pngBytes(t, 10, 8)

	t.Run("edits the subject and decodes the prediction", func(t *testing.T) {
		var captured *aiplatformpb.PredictRequest
		backend := &ImagenBackend{
			endpoint: "projects/p/locations/l/publishers/google/models/m",
			predict: func(_ context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
				captured = req
				return prediction(t, map[string]any{
					"bytesBase64Encoded": base64.StdEncoding.EncodeToString(out),
					"mimeType":           "image/png",
				}), nil
			},
		}

		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, Description: "curly shag"})
		require.Equal(t, transform.KindSuccess, res.Kind, res.Message)
		w, h := pngSize(t, res.Image)
		assert.Equal(t, 10, w)
		assert.Equal(t, 8, h)

		require.NotNil(t, captured)
		assert.Equal(t, "projects/p/locations/l/publishers/google/models/m", captured.Endpoint)
		instance := captured.Instances[0].GetStructValue().GetFields()
		assert.Contains(t, instance["prompt"].GetStringValue(), "curly shag")
		refs := instance["referenceImages"].GetListValue().GetValues()
		require.Len(t, refs, 1)
		raw := refs[0].GetStructValue().GetFields()["referenceImage"].GetStructValue().GetFields()["bytesBase64Encoded"].GetStringValue()
		assert.Equal(t, base64.StdEncoding.EncodeToString(subject), raw)
	})

	t.Run("reference reaches the prompt through analysis", func(t *testing.T) {
		var prompt string
		analyzer := NewAnalyzer(&mockMultimodal{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "Long platinum blonde layers with curtain bangs and soft waves at the ends.", nil
		}}, nil, time.Hour)
		backend := &ImagenBackend{
			analyzer: analyzer,
			predict: func(_ context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
				prompt = req.Instances[0].GetStructValue().GetFields()["prompt"].GetStringValue()
				return prediction(t, map[string]any{"bytesBase64Encoded": base64.StdEncoding.EncodeToString(out)}), nil
			},
		}

		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, ReferenceImage: pngBytes(t, 2, 2)})
		require.Equal(t, transform.KindSuccess, res.Kind)
		assert.Contains(t, prompt, "curtain bangs")
	})

	t.Run("filtered prediction is text only", func(t *testing.T) {
		backend := &ImagenBackend{predict: func(context.Context, *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
			return prediction(t, map[string]any{"raiFilteredReason": "The image was filtered for safety."}), nil
		}}
		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, Description: "buzz cut"})
		assert.Equal(t, transform.KindTextOnly, res.Kind)
		assert.Equal(t, "The image was filtered for safety.", res.Explanation)
	})

	t.Run("empty predictions", func(t *testing.T) {
		backend := &ImagenBackend{predict: func(context.Context, *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
			return &aiplatformpb.PredictResponse{}, nil
		}}
		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, Description: "buzz cut"})
		assert.Equal(t, transform.ErrorDecode, res.ErrorKind)
	})

	t.Run("rpc deadline", func(t *testing.T) {
		backend := &ImagenBackend{predict: func(context.Context, *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
			return nil, context.DeadlineExceeded
		}}
		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, Description: "buzz cut"})
		assert.Equal(t, transform.ErrorTimeout, res.ErrorKind)
	})

	t.Run("rpc failure", func(t *testing.T) {
		backend := &ImagenBackend{predict: func(context.Context, *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
			return nil, errors.New("permission denied")
		}}
		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, Description: "buzz cut"})
		assert.Equal(t, transform.ErrorNetwork, res.ErrorKind)
		assert.NoError(t, backend.Close())
	})
}
