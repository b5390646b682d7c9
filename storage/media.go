// file: storage/media.go

package storage

import "context"

// UploadResult describes a successfully stored media object.
type UploadResult struct {
	URL string
	Key string
}

// MediaStorage is the contract for the external media host. Implementations
// take a staged local file and return its public URL.
type MediaStorage interface {
	Upload(ctx context.Context, localFilePath string) (*UploadResult, error)
}
