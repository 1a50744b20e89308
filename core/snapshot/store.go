package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"mapsync/core/content"
	"mapsync/core/storage"
	"mapsync/core/viewport"
)

// Snapshot is a persisted content description plus the viewport it was
// captured with, so a restore can reproduce the whole map state.
type Snapshot struct {
	// Name is the snapshot identifier, unique within the store prefix.
	Name string `json:"name"`

	// SavedAt is the capture timestamp.
	SavedAt time.Time `json:"saved_at"`

	// Viewport is the camera state at capture time.
	Viewport viewport.State `json:"viewport"`

	// Description is the captured content description. View-annotation
	// resources are runtime-only and do not survive the round trip.
	Description *content.Description `json:"description"`
}

// Store persists description snapshots as JSON objects in a bucket.
type Store struct {
	client storage.Client
	bucket string
	prefix string
	ttl    time.Duration
}

// NewStore creates a snapshot store over the given storage client.
func NewStore(client storage.Client, bucket string, cfg Config) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		ttl:    time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}
}

// EnsureBucket verifies the bucket exists, creating it if needed.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Save writes the snapshot under its name, overwriting any previous one,
// and invalidates the cached copy.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if snap.Name == "" {
		return fmt.Errorf("snapshot name must not be empty")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.Name, err)
	}

	_, err = s.client.PutObject(
		ctx,
		s.bucket,
		s.objectKey(snap.Name),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", snap.Name, err)
	}

	invalidate(s.cacheKey(snap.Name))
	return nil
}

// Load reads and decodes the named snapshot directly from storage.
// Callers that tolerate slightly stale data use Get instead.
func (s *Store) Load(ctx context.Context, name string) (*Snapshot, error) {
	reader, err := s.client.GetObject(ctx, s.bucket, s.objectKey(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", name, err)
	}
	return &snap, nil
}

// List returns the names of all stored snapshots, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}

	var names []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", info.Err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(info.Key, prefix), ".json")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named snapshot and its cached copy.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectKey(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	invalidate(s.cacheKey(name))
	return nil
}

func (s *Store) objectKey(name string) string {
	return path.Join(s.prefix, name+".json")
}

func (s *Store) cacheKey(name string) string {
	return s.bucket + "|" + s.objectKey(name)
}
