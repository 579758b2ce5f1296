package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"docgen/config"
	ingestsvc "docgen/internal/services/ingest"
	"docgen/pkg/apperror"
	"docgen/pkg/apperror/status"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v3"
)

type Handler struct {
	cfg    *config.Config
	s3     *s3.Client
	ingest *ingestsvc.Service
}

func NewHandler(cfg *config.Config, s3Client *s3.Client, ingest *ingestsvc.Service) *Handler {
	return &Handler{cfg: cfg, s3: s3Client, ingest: ingest}
}

// HandleUpload stores an uploaded PDF (S3 when a bucket is configured,
// local storage dir otherwise) and ingests it in the same request.
func (h *Handler) HandleUpload(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "file is required")
	}
	if fh == nil || fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "empty file")
	}

	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "cannot open file")
	}
	defer file.Close()

	hasher := sha256.New()
	useS3 := h.s3 != nil && strings.TrimSpace(h.cfg.S3.Bucket) != ""

	var storedPath string
	if useS3 {
		storedPath, err = h.storeToS3(c, file, fh, hasher)
	} else {
		storedPath, err = h.storeToLocal(file, fh, hasher)
	}
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, status.ErrorCodeInternal, err)
	}

	res := h.ingest.IngestUploaded(context.Background(), storedPath, fh.Filename)
	if res.Err != nil && !errors.Is(res.Err, ingestsvc.ErrDuplicateReport) {
		return apperror.InternalError(config.ModuleUpload, c, status.IngestInternal, res.Err)
	}

	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    res.Message,
		TrackingID: trackingID,
		Data:       res,
	})
}

// uploadName prefixes the content hash for uniqueness on disk and keeps
// the original stem for readability. Identifier and year are derived
// from the client's original filename, never from this name.
func uploadName(fh *multipart.FileHeader, shaHex string) string {
	base := filepath.Base(fh.Filename)
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		ext = ".pdf"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s__%s%s", shaHex[:12], stem, ext)
}

func (h *Handler) storeToLocal(r io.Reader, fh *multipart.FileHeader, hasher hash.Hash) (string, error) {
	baseDir := h.cfg.Ingest.StorageDir
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(baseDir, "upload-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	mw := io.MultiWriter(tmpFile, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	finalPath := filepath.Join(baseDir, uploadName(fh, hex.EncodeToString(hasher.Sum(nil))))

	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}
	return finalPath, nil
}

func (h *Handler) storeToS3(c fiber.Ctx, r io.Reader, fh *multipart.FileHeader, hasher hash.Hash) (string, error) {
	bucket := h.cfg.S3.Bucket
	ctx := c.Context()

	if _, err := h.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		_, crtErr := h.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		if crtErr != nil {
			var owned *s3types.BucketAlreadyOwnedByYou
			if !errors.As(crtErr, &owned) {
				return "", fmt.Errorf("create bucket: %w", crtErr)
			}
		}
	}

	// Body is read twice (hash, then upload); buffer to a temp file.
	tmp, err := os.CreateTemp("", "s3-upload-*.tmp")
	if err != nil {
		return "", fmt.Errorf("tempfile: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	mw := io.MultiWriter(tmp, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", fmt.Errorf("stream copy: %w", err)
	}

	key := "reports/" + uploadName(fh, hex.EncodeToString(hasher.Sum(nil)))

	if _, err := tmp.Seek(0, 0); err != nil {
		return "", fmt.Errorf("seek: %w", err)
	}
	_, err = h.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        tmp,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
