package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

const defaultImagenModel = "imagen-3.0-capability-001"

// ImagenConfig describes how to connect to Vertex AI Imagen.
type ImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	ServiceAccountFile string
	ServiceAccountJSON string
}

type predictFunc func(ctx context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error)

// ImagenBackend edits the subject photo with Vertex AI Imagen. Imagen takes a
// single raw reference image, so a reference hairstyle reaches it as text via
// the analyzer.
type ImagenBackend struct {
	endpoint string
	predict  predictFunc
	close    func() error
	analyzer *Analyzer
}

// NewImagenBackend creates the prediction client once; call Close on shutdown.
func NewImagenBackend(ctx context.Context, cfg ImagenConfig, analyzer *Analyzer) (*ImagenBackend, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	location := strings.TrimSpace(cfg.Location)
	if projectID == "" {
		return nil, fmt.Errorf("imagen: missing project id")
	}
	if location == "" {
		location = "us-central1"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultImagenModel
	}

	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location))}
	if cfg.ServiceAccountJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	} else if cfg.ServiceAccountFile != "" {
		options = append(options, option.WithCredentialsFile(cfg.ServiceAccountFile))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("imagen: prediction client: %w", err)
	}

	return &ImagenBackend{
		endpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", projectID, location, model),
		predict: func(ctx context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
			return client.Predict(ctx, req)
		},
		close:    client.Close,
		analyzer: analyzer,
	}, nil
}

func (b *ImagenBackend) Name() string { return "imagen" }

// Close releases the prediction client.
func (b *ImagenBackend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Transform implements transform.Backend.
func (b *ImagenBackend) Transform(ctx context.Context, req transform.Request) transform.Result {
	if err := req.Validate(); err != nil {
		return transform.FromError(err)
	}

	description := strings.TrimSpace(req.Description)
	if req.HasReference() {
		analysis := b.analyzer.Analyze(ctx, req.ReferenceImage, req.ReferenceMIME)
		if description == "" {
			description = analysis.Description
		} else {
			description = description + ". Reference hairstyle: " + analysis.Description
		}
	}
	prompt := prompts.TextPrompt(description, req.Options)

	instance, err := structpb.NewValue(map[string]any{
		"prompt": prompt,
		"referenceImages": []any{
			map[string]any{
				"referenceType": "REFERENCE_TYPE_RAW",
				"referenceId":   1,
				"referenceImage": map[string]any{
					"bytesBase64Encoded": base64.StdEncoding.EncodeToString(req.SubjectImage),
				},
			},
		},
	})
	if err != nil {
		return transform.FromError(fmt.Errorf("imagen: build instance: %w", err))
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount": 1,
		"editMode":    "EDIT_MODE_DEFAULT",
	})
	if err != nil {
		return transform.FromError(fmt.Errorf("imagen: build parameters: %w", err))
	}

	resp, err := b.predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   b.endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return transform.FromError(fmt.Errorf("imagen: predict: %w", err))
	}
	return decodePrediction(resp)
}

func decodePrediction(resp *aiplatformpb.PredictResponse) transform.Result {
	if resp == nil || len(resp.Predictions) == 0 {
		return transform.FromError(fmt.Errorf("imagen: %w", transform.ErrNoImage))
	}
	fields := resp.Predictions[0].GetStructValue().GetFields()
	encoded := fields["bytesBase64Encoded"].GetStringValue()
	if encoded == "" {
		if reason := fields["raiFilteredReason"].GetStringValue(); reason != "" {
			return transform.TextOnly(reason)
		}
		return transform.FromError(fmt.Errorf("imagen: %w", transform.ErrNoImage))
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return transform.FromError(fmt.Errorf("imagen: decode result: %w", err))
	}
	return transform.Success(data, imageMIME(data, fields["mimeType"].GetStringValue()))
}
