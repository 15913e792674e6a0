package extraction

import "context"

// VisionClient is the model surface the pipeline needs: an image file
// store plus a single multimodal generate call.
type VisionClient interface {
	// Upload pushes a staged image to the model's file store.
	Upload(ctx context.Context, localPath string) (*RemoteFile, error)
	// Extract runs the receipt-extraction prompt against an uploaded
	// image and returns the raw text response.
	Extract(ctx context.Context, file *RemoteFile) (string, error)
	// Delete removes an uploaded image from the file store.
	Delete(ctx context.Context, name string) error
	// Close closes the client and releases resources.
	Close() error
}
