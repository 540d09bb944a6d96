package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vaudterroir/api/internal/utils"
)

type fakeUploader struct {
	lastKey string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastKey = key
	return "https://cdn.example.org/" + key, nil
}

type fakeScreener struct {
	flagged []string
	err     error
}

func (f *fakeScreener) Check(context.Context, []byte) ([]string, error) {
	return f.flagged, f.err
}

func TestUploadHappyPath(t *testing.T) {
	up := &fakeUploader{}
	svc := NewImageService(up, &fakeScreener{})

	url, err := svc.Upload(context.Background(), []byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(up.lastKey, "producers/") || !strings.HasSuffix(up.lastKey, ".jpg") {
		t.Errorf("key = %q, want producers/<uuid>.jpg", up.lastKey)
	}
	if url != "https://cdn.example.org/"+up.lastKey {
		t.Errorf("url = %q does not match stored key", url)
	}
}

func TestUploadRejectsFlaggedContent(t *testing.T) {
	svc := NewImageService(&fakeUploader{}, &fakeScreener{flagged: []string{"Violence"}})

	if _, err := svc.Upload(context.Background(), []byte("x"), "image/png"); !errors.Is(err, utils.ErrImageRejected) {
		t.Errorf("err = %v, want ErrImageRejected", err)
	}
}

func TestUploadAcceptsWhenScreeningUnavailable(t *testing.T) {
	svc := NewImageService(&fakeUploader{}, &fakeScreener{err: errors.New("throttled")})

	if _, err := svc.Upload(context.Background(), []byte("x"), "image/webp"); err != nil {
		t.Errorf("Upload: %v, want screening outage to be non-fatal", err)
	}
}

func TestUploadValidation(t *testing.T) {
	svc := NewImageService(&fakeUploader{}, nil)

	if _, err := svc.Upload(context.Background(), nil, "image/jpeg"); !errors.Is(err, utils.ErrInvalidSubmission) {
		t.Errorf("empty payload: err = %v, want ErrInvalidSubmission", err)
	}
	if _, err := svc.Upload(context.Background(), []byte("x"), "image/gif"); !errors.Is(err, utils.ErrInvalidSubmission) {
		t.Errorf("unsupported type: err = %v, want ErrInvalidSubmission", err)
	}
	big := make([]byte, maxImageSize+1)
	if _, err := svc.Upload(context.Background(), big, "image/jpeg"); !errors.Is(err, utils.ErrInvalidSubmission) {
		t.Errorf("oversized payload: err = %v, want ErrInvalidSubmission", err)
	}
}
