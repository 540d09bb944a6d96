package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vaudterroir/api/internal/utils"
)

// ImageUploader stores image bytes and returns their public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageScreener flags unacceptable image content. A nil result means the
// image passed.
type ImageScreener interface {
	Check(ctx context.Context, imageData []byte) ([]string, error)
}

// ImageService accepts image uploads for producer submissions: screen the
// content, store the bytes, hand back a URL the submission form puts into
// its ordered image list.
type ImageService struct {
	uploader ImageUploader
	screener ImageScreener
}

// NewImageService constructs an ImageService. screener may be nil when
// content screening is not configured.
func NewImageService(uploader ImageUploader, screener ImageScreener) *ImageService {
	return &ImageService{uploader: uploader, screener: screener}
}

// maxImageSize bounds a single upload to 8 MiB.
const maxImageSize = 8 << 20

// Upload screens and stores one image, returning its public URL. Multiple
// images of one submission may be uploaded concurrently; the caller keeps
// the ordered URL list, so completion order here is irrelevant.
func (s *ImageService) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", utils.ErrInvalidSubmission)
	}
	if len(data) > maxImageSize {
		return "", fmt.Errorf("%w: image exceeds size limit", utils.ErrInvalidSubmission)
	}
	ext := extensionFor(contentType)
	if ext == "" {
		return "", fmt.Errorf("%w: unsupported content type %s", utils.ErrInvalidSubmission, contentType)
	}

	if s.screener != nil {
		flagged, err := s.screener.Check(ctx, data)
		if err != nil {
			// Screening outage should not block legitimate submissions;
			// moderators still review every image before it goes public.
			log.Warn().Err(err).Msg("image screening unavailable, accepting upload unscreened")
		} else if len(flagged) > 0 {
			log.Info().Strs("labels", flagged).Msg("image rejected by content screen")
			return "", fmt.Errorf("%w: %s", utils.ErrImageRejected, strings.Join(flagged, ", "))
		}
	}

	key := fmt.Sprintf("producers/%s%s", uuid.New().String(), ext)
	url, err := s.uploader.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	log.Info().Str("key", key).Int("bytes", len(data)).Msg("image uploaded")
	return url, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}
