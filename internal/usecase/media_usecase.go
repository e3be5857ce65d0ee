package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/imaging"
	"portfolio-admin-backend/pkg/logger"
	"portfolio-admin-backend/pkg/security"
	"portfolio-admin-backend/pkg/storage"
	"portfolio-admin-backend/pkg/validation"

	"github.com/google/uuid"
)

type mediaService struct {
	storage storage.ObjectStorage
	limiter *security.UploadLimiter
	audit   *security.SecurityLogger
	now     func() time.Time
}

// NewMediaService resizes section images and stores them under "{section}/".
// A nil limiter disables upload rate limiting.
func NewMediaService(store storage.ObjectStorage, limiter *security.UploadLimiter, audit *security.SecurityLogger) domain.MediaService {
	if audit == nil {
		audit = security.NopLogger()
	}
	return &mediaService{storage: store, limiter: limiter, audit: audit, now: time.Now}
}

func (s *mediaService) UploadImage(ctx context.Context, ownerID string, section domain.Section, file *domain.ImageFile) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", validation.Required("image")
	}

	check := security.ValidateImage(file.Filename, file.Data)
	if !check.Valid {
		s.audit.LogUserEvent(ctx, security.EventUploadRejected, ownerID, requestID(ctx), map[string]any{
			"section": string(section),
			"reason":  check.Error,
		})
		return "", apperror.UploadFailed(errors.New(check.Error))
	}

	if s.limiter != nil {
		allowed, retryAfter, err := s.limiter.AllowUpload(ctx, clientIP(ctx), ownerID)
		switch {
		case errors.Is(err, security.ErrLimiterUnavailable):
			// no redis, fail open
		case err != nil:
			logger.Log.Warn("upload limiter check failed", "error", err)
		case !allowed:
			return "", apperror.TooManyAttempts(fmt.Sprintf("Upload limit reached. Try again in %d seconds.", retryAfter))
		}
	}

	data, err := imaging.ProcessUpload(file.Data)
	if err != nil {
		return "", apperror.UploadFailed(err)
	}

	path := fmt.Sprintf("%s/%d_%s.jpg", section, s.now().UnixNano(), uuid.NewString())
	if err := s.storage.Upload(ctx, path, data, storage.DefaultImageOptions); err != nil {
		return "", apperror.UploadFailed(err)
	}

	logger.Log.Info("image uploaded", "section", section, "path", path, "bytes", len(data))
	return s.storage.PublicURL(path), nil
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(domain.KeyClientIP).(string)
	return ip
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(domain.KeyRequestID).(string)
	return id
}
