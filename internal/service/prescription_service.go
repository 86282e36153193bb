package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/pkg/mailer"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/pkg/events"
	"cognimed-be/pkg/extractor"
	"cognimed-be/pkg/storage"

	"gorm.io/datatypes"
)

const prescriptionModule = "PrescriptionService"

// RecordExtractor reads a prescription image into record text and notification data.
type RecordExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*extractor.Extraction, error)
}

type IPrescriptionService interface {
	Upload(ctx context.Context, req *dto.UploadPrescriptionRequest) (*dto.UploadPrescriptionResponse, error)
	ListByUsername(ctx context.Context, username string) ([]dto.PrescriptionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type prescriptionService struct {
	uowFactory   unitofwork.RepositoryFactory
	storage      storage.ObjectStorage
	extractor    RecordExtractor
	area         *extractor.PatientArea
	emailService mailer.IEmailService
	publisher    events.Publisher
	timeout      time.Duration
	logger       logger.ILogger

	locks sync.Map
	now   func() time.Time
}

func NewPrescriptionService(
	uowFactory unitofwork.RepositoryFactory,
	objectStorage storage.ObjectStorage,
	recordExtractor RecordExtractor,
	area *extractor.PatientArea,
	emailService mailer.IEmailService,
	publisher events.Publisher,
	timeout time.Duration,
	log logger.ILogger,
) IPrescriptionService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &prescriptionService{
		uowFactory:   uowFactory,
		storage:      objectStorage,
		extractor:    recordExtractor,
		area:         area,
		emailService: emailService,
		publisher:    publisher,
		timeout:      timeout,
		logger:       log,
		now:          time.Now,
	}
}

func (s *prescriptionService) Upload(ctx context.Context, req *dto.UploadPrescriptionRequest) (*dto.UploadPrescriptionResponse, error) {
	if len(req.Content) == 0 {
		return nil, apperror.Validation("prescription file is required")
	}
	if _, err := s.area.Dir(req.Username); err != nil {
		return nil, apperror.Validation("invalid username")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	url, err := s.storage.Upload(ctx, req.FileName, bytes.NewReader(req.Content))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "file upload failed", err)
	}

	p := &entity.Prescription{
		DoctorName:   req.DoctorName,
		VisitDate:    req.VisitDate,
		VisitTime:    req.VisitTime,
		HospitalName: req.HospitalName,
		Username:     req.Username,
		FileURL:      url,
		CreatedAt:    s.now(),
	}
	if err := uow.PrescriptionRepository().Create(ctx, p); err != nil {
		return nil, err
	}

	s.process(ctx, user, p, req)

	return &dto.UploadPrescriptionResponse{
		Detail:  "Prescription uploaded successfully",
		FileURL: url,
		Id:      p.Id,
	}, nil
}

// process extracts the record and updates the patient's documents. Failures
// are logged; the upload itself has already succeeded.
func (s *prescriptionService) process(ctx context.Context, user *entity.User, p *entity.Prescription, req *dto.UploadPrescriptionRequest) {
	unlock := s.lock(req.Username)
	defer unlock()

	details := map[string]interface{}{"username": req.Username, "prescription_id": p.Id}

	extractCtx, cancel := context.WithTimeout(ctx, s.timeout)
	extraction, err := s.extractor.Extract(extractCtx, req.Content, req.MimeType)
	cancel()
	if err != nil {
		details["error"] = err
		s.logger.Error(prescriptionModule, "Prescription extraction failed", details)
		return
	}

	recordPath, _ := s.area.RecordPath(req.Username)
	now := s.now()
	if err := extractor.AppendRecordSection(recordPath, extractor.Section{
		Title:   extractor.SectionTitle(now),
		Content: extraction.Text,
	}); err != nil {
		details["error"] = err
		s.logger.Error(prescriptionModule, "Medical record update failed", details)
		return
	}

	if extraction.Notification != nil {
		notificationsPath, _ := s.area.NotificationsPath(req.Username)
		if err := extractor.AppendNotification(notificationsPath, extraction.Notification, now); err != nil {
			details["error"] = err
			s.logger.Error(prescriptionModule, "Notification update failed", details)
		}
	}

	extracted, err := json.Marshal(map[string]interface{}{
		"text":         extraction.Text,
		"notification": extraction.Notification,
	})
	if err == nil {
		p.Extracted = datatypes.JSON(extracted)
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.PrescriptionRepository().Update(ctx, p); err != nil {
			s.logger.Warn(prescriptionModule, "Saving extraction failed", map[string]interface{}{"prescription_id": p.Id, "error": err})
		}
	}

	s.logger.Info(prescriptionModule, "Prescription processed", details)

	if s.publisher != nil {
		evt := events.New(events.PrescriptionProcessed, map[string]interface{}{
			"prescription_id": p.Id,
			"username":        req.Username,
			"has_schedule":    extraction.Notification != nil,
		})
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn(prescriptionModule, "Event publish failed", map[string]interface{}{"error": err})
		}
	}

	s.remind(user, extraction.Notification)
}

func (s *prescriptionService) remind(user *entity.User, n *extractor.Notification) {
	if s.emailService == nil || n == nil || n.NextVisit.Date == "" || user.Email == "" {
		return
	}
	reminder := mailer.FollowUp{Date: n.NextVisit.Date, Reason: n.NextVisit.Reason}
	for _, m := range n.Medications {
		reminder.Medications = append(reminder.Medications, m.Name)
	}
	go func() {
		if err := s.emailService.SendFollowUpReminder(user.Email, user.Name, reminder); err != nil {
			s.logger.Warn(prescriptionModule, "Follow-up reminder failed", map[string]interface{}{"username": user.Username, "error": err})
		}
	}()
}

func (s *prescriptionService) lock(username string) func() {
	v, _ := s.locks.LoadOrStore(username, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *prescriptionService) ListByUsername(ctx context.Context, username string) ([]dto.PrescriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.PrescriptionRepository().FindAll(ctx,
		specification.ByUsername{Username: username},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.PrescriptionResponse, 0, len(items))
	for _, p := range items {
		item := dto.PrescriptionResponse{
			Id:           p.Id,
			DoctorName:   p.DoctorName,
			VisitDate:    p.VisitDate,
			VisitTime:    p.VisitTime,
			HospitalName: p.HospitalName,
			Username:     p.Username,
			FileURL:      p.FileURL,
			CreatedAt:    p.CreatedAt,
		}
		if len(p.Extracted) > 0 {
			item.Extracted = json.RawMessage(p.Extracted)
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *prescriptionService) Delete(ctx context.Context, id uint) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	p, err := uow.PrescriptionRepository().FindOne(ctx, specification.ByPrescriptionID{ID: id})
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("Prescription not found")
	}
	if err := uow.PrescriptionRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(prescriptionModule, "Prescription deleted", map[string]interface{}{"prescription_id": id})
	return nil
}
