package storage

import "context"

// UploadOptions mirror the object metadata the panel sets on every upload.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// DefaultImageOptions are used for resized section images.
var DefaultImageOptions = UploadOptions{
	ContentType:  "image/jpeg",
	CacheControl: "no-cache",
	Upsert:       true,
}

type ObjectStorage interface {
	Upload(ctx context.Context, path string, data []byte, opts UploadOptions) error
	PublicURL(path string) string
}
