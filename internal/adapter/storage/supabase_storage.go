package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"study-deck/internal/config"
	"study-deck/internal/domain"

	"github.com/gosimple/slug"
	storage_go "github.com/supabase-community/storage-go"
)

// bucketClient is the subset of the storage-go client used here.
type bucketClient interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	CreateSignedUrl(bucketId string, filePath string, expiresIn int) (storage_go.SignedUrlResponse, error)
	RemoveFile(bucketId string, paths []string) ([]storage_go.FileUploadResponse, error)
}

// SupabaseFileStore stores objects in Supabase Storage with the service role key.
type SupabaseFileStore struct {
	client bucketClient
}

var _ domain.FileStore = (*SupabaseFileStore)(nil)

func NewSupabaseFileStore(supabaseCfg config.SupabaseConfig) (*SupabaseFileStore, error) {
	if supabaseCfg.URL == "" || supabaseCfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase url and service key are required for storage")
	}
	endpoint := strings.TrimRight(supabaseCfg.URL, "/") + "/storage/v1"
	return &SupabaseFileStore{client: storage_go.NewClient(endpoint, supabaseCfg.ServiceKey, nil)}, nil
}

func (s *SupabaseFileStore) Upload(ctx context.Context, bucket, objectPath, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	_, err := s.client.UploadFile(bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, objectPath, err)
	}
	return nil
}

func (s *SupabaseFileStore) SignedURL(ctx context.Context, bucket, objectPath string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUrl(bucket, objectPath, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s/%s: %w", bucket, objectPath, err)
	}
	return resp.SignedURL, nil
}

func (s *SupabaseFileStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove objects from %s: %w", bucket, err)
	}
	return nil
}

// ObjectPath builds "<owner>/<id>-<slug of file name><ext>".
func ObjectPath(ownerID, id, fileName, ext string) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	name := slug.Make(base)
	if name == "" {
		name = "file"
	}
	if len(name) > 60 {
		name = strings.TrimRight(name[:60], "-")
	}
	return path.Join(ownerID, id+"-"+name+ext)
}
