// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/mediakart/mediakart-backend/internal/apperror"
	"github.com/mediakart/mediakart-backend/internal/config"
)

// StorageService writes uploads to local disk. Uploaded files are write-once:
// every upload gets a fresh unique name, so downloads never race with writes.
// When AWS credentials are configured the file is additionally mirrored to S3.
type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

type StoredFile struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{cfg: cfg}

	if cfg.AWS.AccessKeyID != "" {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWS.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID,
				cfg.AWS.SecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		svc.s3Client = s3.New(sess)
	}

	return svc, nil
}

// SaveUpload stores the uploaded file under the configured upload directory
// with a unique name derived from the form field: <field>-<timestamp><ext>.
// The returned path is persisted verbatim on the product record.
func (s *StorageService) SaveUpload(file multipart.File, header *multipart.FileHeader, field string) (*StoredFile, error) {
	if s.cfg.Storage.MaxFileSize > 0 && header.Size > s.cfg.Storage.MaxFileSize {
		return nil, apperror.NewValidation(fmt.Sprintf(
			"file size %d bytes exceeds maximum allowed size %d bytes",
			header.Size, s.cfg.Storage.MaxFileSize,
		))
	}

	if err := os.MkdirAll(s.cfg.Storage.UploadDir, 0o755); err != nil {
		return nil, apperror.NewInternal("failed to create upload directory", err)
	}

	filename := s.generateFileName(header.Filename, field)
	destPath := filepath.Join(s.cfg.Storage.UploadDir, filename)

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.NewInternal("failed to read uploaded file", err)
	}

	if err := os.WriteFile(destPath, fileBytes, 0o644); err != nil {
		return nil, apperror.NewInternal("failed to write uploaded file", err)
	}

	if s.s3Client != nil {
		if err := s.mirrorToS3(fileBytes, filename, header.Header.Get("Content-Type")); err != nil {
			// The local copy is authoritative; a failed mirror is not fatal.
			logrus.WithError(err).WithField("file", filename).Warn("Failed to mirror upload to S3")
		}
	}

	return &StoredFile{
		Path:         destPath,
		OriginalName: header.Filename,
		Size:         header.Size,
	}, nil
}

// Resolve verifies that a stored file still exists on disk and returns its
// absolute path together with the base name used for download headers.
func (s *StorageService) Resolve(storedPath string) (absPath, baseName string, err error) {
	absPath, err = filepath.Abs(storedPath)
	if err != nil {
		return "", "", apperror.NewInternal("failed to resolve file path", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return "", "", apperror.NewFileUnavailable("file not found on server")
	}

	return absPath, filepath.Base(absPath), nil
}

func (s *StorageService) mirrorToS3(fileBytes []byte, key, contentType string) error {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// PresignedURL returns a temporary S3 URL for a mirrored file.
func (s *StorageService) PresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

func (s *StorageService) generateFileName(originalName, field string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s-%d%s", field, time.Now().UnixMilli(), ext)
}

// ValidateImage checks the file signature of a cover image upload.
func (s *StorageService) ValidateImage(file multipart.File) error {
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		return apperror.NewInternal("failed to read file", err)
	}

	// Reset file pointer for the subsequent save
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return apperror.NewInternal("failed to rewind file", err)
	}

	if !isValidImageType(buffer) {
		return apperror.NewValidation("image file must be JPEG, PNG, or GIF")
	}

	return nil
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}

	// PNG
	if len(buffer) >= 8 && buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47 {
		return true
	}

	// GIF
	if len(buffer) >= 6 && (string(buffer[0:6]) == "GIF87a" || string(buffer[0:6]) == "GIF89a") {
		return true
	}

	return false
}
