package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

const (
	// MaxImageBytes caps a single uploaded image.
	MaxImageBytes = 5 << 20
	imageFolder   = "campus-issues"
)

// UploadService relays image bytes to the external image host untouched.
type UploadService struct {
	host ports.ImageHost
	log  zerolog.Logger
}

func NewUploadService(host ports.ImageHost, log zerolog.Logger) *UploadService {
	return &UploadService{host: host, log: log}
}

// Upload checks the file is an image within the size cap and forwards it.
func (s *UploadService) Upload(ctx context.Context, input ports.UploadInput) (*ports.UploadResult, error) {
	if input.Body == nil {
		return nil, domain.NewError(domain.ErrValidation, "No image file provided")
	}
	if input.Size > MaxImageBytes {
		return nil, domain.NewError(domain.ErrValidation, "Image cannot exceed 5MB")
	}
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.NewError(domain.ErrValidation, "Only image files are allowed")
	}

	publicID := ksuid.New().String()
	url, err := s.host.Put(ctx, path.Join(imageFolder, publicID), contentType, input.Body, input.Size)
	if err != nil {
		logFor(ctx, &s.log).Error().Err(err).Str("filename", input.Filename).Msg("image upload failed")
		return nil, domain.NewError(domain.ErrExternalService, fmt.Sprintf("Failed to upload image: %v", err))
	}

	logFor(ctx, &s.log).Info().Str("public_id", publicID).Int64("size", input.Size).Msg("image uploaded")
	return &ports.UploadResult{URL: url, PublicID: publicID}, nil
}

// RemoveByURL deletes an image given its public URL. URLs that were not
// produced by this service are ignored.
func (s *UploadService) RemoveByURL(ctx context.Context, url string) error {
	publicID, ok := s.publicID(url)
	if !ok {
		return nil
	}
	return s.Delete(ctx, publicID)
}

func (s *UploadService) publicID(url string) (string, bool) {
	marker := "/" + imageFolder + "/"
	i := strings.LastIndex(url, marker)
	if i < 0 {
		return "", false
	}
	id := url[i+len(marker):]
	if _, err := ksuid.Parse(id); err != nil {
		return "", false
	}
	if s.host.URL(path.Join(imageFolder, id)) != url {
		return "", false
	}
	return id, true
}

// Delete removes a previously relayed image.
func (s *UploadService) Delete(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" || strings.ContainsAny(publicID, `/\`) || publicID == ".." {
		return domain.NewError(domain.ErrValidation, "Invalid image id")
	}
	if err := s.host.Remove(ctx, path.Join(imageFolder, publicID)); err != nil {
		logFor(ctx, &s.log).Error().Err(err).Str("public_id", publicID).Msg("image delete failed")
		return domain.NewError(domain.ErrExternalService, "Failed to delete image")
	}
	return nil
}
