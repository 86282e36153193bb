package service

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/repository/memory"
	"cognimed-be/pkg/extractor"
)

// IPatientDocumentService reads the per-patient documents under the static area.
type IPatientDocumentService interface {
	// RecordText is the text of Medical_Record.pdf, "" when the file is absent
	// or cannot be read as a PDF.
	RecordText(ctx context.Context, username string) (string, error)
	// NotificationsText is medical_notifications.json verbatim, "" when absent.
	NotificationsText(ctx context.Context, username string) (string, error)
	Area() *extractor.PatientArea
}

const documentModule = "PatientDocumentService"

type patientDocumentService struct {
	area   *extractor.PatientArea
	cache  *memory.DocumentCache
	logger logger.ILogger
}

// NewPatientDocumentService accepts a nil cache.
func NewPatientDocumentService(area *extractor.PatientArea, cache *memory.DocumentCache, log logger.ILogger) IPatientDocumentService {
	return &patientDocumentService{area: area, cache: cache, logger: log}
}

func (s *patientDocumentService) Area() *extractor.PatientArea {
	return s.area
}

func (s *patientDocumentService) RecordText(ctx context.Context, username string) (string, error) {
	path, err := s.area.RecordPath(username)
	if err != nil {
		return "", apperror.Validation("invalid patient username")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	if s.cache != nil {
		if text, ok := s.cache.Get(path, info.ModTime()); ok {
			return text, nil
		}
	}

	text, err := extractor.ExtractText(path)
	if err != nil {
		s.logger.Warn(documentModule, "Unreadable medical record, using empty text", map[string]interface{}{
			"username": username,
			"error":    err,
		})
		return "", nil
	}
	if s.cache != nil {
		s.cache.Save(path, info.ModTime(), text)
	}
	return text, nil
}

func (s *patientDocumentService) NotificationsText(ctx context.Context, username string) (string, error) {
	path, err := s.area.NotificationsPath(username)
	if err != nil {
		return "", apperror.Validation("invalid patient username")
	}
	return extractor.ReadNotificationsRaw(path)
}
