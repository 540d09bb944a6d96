package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog/log"

	appconfig "github.com/vaudterroir/api/internal/config"
)

// Screener runs submitted images through AWS Rekognition content
// moderation before they are accepted into the upload bucket.
type Screener struct {
	client        *rekognition.Client
	minConfidence float32
	enabled       bool
}

// NewScreener builds a Rekognition-backed image screener. When screening
// is disabled by config the screener passes everything through.
func NewScreener(cfg *appconfig.AWSConfig) (*Screener, error) {
	if !cfg.ImageScreening {
		log.Warn().Msg("image screening disabled - uploads are not moderated")
		return &Screener{enabled: false}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.RekognitionRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &Screener{
		client:        rekognition.NewFromConfig(awsCfg),
		minConfidence: 80,
		enabled:       true,
	}, nil
}

// Check returns the moderation labels Rekognition flagged on the image.
// An empty slice means the image is acceptable.
func (s *Screener) Check(ctx context.Context, imageData []byte) ([]string, error) {
	if !s.enabled {
		return nil, nil
	}

	out, err := s.client.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: imageData},
		MinConfidence: aws.Float32(s.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("provider error: %w", err)
	}

	var flagged []string
	for _, l := range out.ModerationLabels {
		if l.Name == nil {
			continue
		}
		// Top-level categories only; child labels repeat their parent.
		if l.ParentName == nil || *l.ParentName == "" {
			flagged = append(flagged, *l.Name)
		}
	}
	return flagged, nil
}
