package gcp

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// ObjectDownloader fetches document bytes from Cloud Storage. The pipeline
// consumes it through a narrow interface so tests can substitute an
// in-memory fake.
type ObjectDownloader struct {
	client *storage.Client
}

// NewObjectDownloader wraps an existing storage client.
func NewObjectDownloader(client *storage.Client) *ObjectDownloader {
	return &ObjectDownloader{client: client}
}

// Download reads the whole object at the path stored on the document record.
// Page splitting needs random access, so the object is buffered in memory
// rather than streamed.
func (d *ObjectDownloader) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := d.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}
