package ports

import (
	"context"
	"io"
)

// ImageHost is the external service image bytes are relayed to.
type ImageHost interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Remove(ctx context.Context, key string) error
	// URL returns the public URL an object stored under key is served from.
	URL(key string) string
}

// UploadInput describes one uploaded file as received from the client.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult identifies a relayed image.
type UploadResult struct {
	URL      string
	PublicID string
}

type UploadService interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageReleaser schedules removal of images that are no longer referenced.
// Release must not block the caller.
type ImageReleaser interface {
	Release(issueID string, urls []string)
}
