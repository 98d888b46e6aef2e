package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"freightdesk/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DeletionManifest records one committed delete operation.
type DeletionManifest struct {
	DeletedAt time.Time             `json:"deleted_at"`
	DeletedBy *uuid.UUID            `json:"deleted_by,omitempty"`
	Houses    []models.DeletedHouse `json:"houses"`
}

// DocumentArchiver stores deletion manifests outside the database.
type DocumentArchiver interface {
	ArchiveDeletion(ctx context.Context, manifest *DeletionManifest) (objectName string, err error)
	EnsureBucketExists(ctx context.Context) error
}

type minioArchiver struct {
	client *minio.Client
	bucket string
}

func NewMinioArchiver(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (DocumentArchiver, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioArchiver{client: client, bucket: bucket}, nil
}

func manifestObjectName(m *DeletionManifest) string {
	return fmt.Sprintf("deletions/%s/%s.json", m.DeletedAt.UTC().Format("2006/01/02"), uuid.New())
}

func (a *minioArchiver) ArchiveDeletion(ctx context.Context, manifest *DeletionManifest) (string, error) {
	body, err := json.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	objectName := manifestObjectName(manifest)
	_, err = a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (a *minioArchiver) EnsureBucketExists(ctx context.Context) error {
	found, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if !found {
		return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
