package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/pkg/events"
	"cognimed-be/pkg/extractor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	files map[string][]byte
}

func (m *memStorage) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return "https://files.example.com/" + name, nil
}

type stubExtractor struct {
	extraction *extractor.Extraction
	err        error
}

func (s *stubExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*extractor.Extraction, error) {
	return s.extraction, s.err
}

func uploadRequest(username string) *dto.UploadPrescriptionRequest {
	return &dto.UploadPrescriptionRequest{
		DoctorName:   "Dr Mehta",
		VisitDate:    "2025-01-10",
		VisitTime:    "10:30",
		HospitalName: "City Hospital",
		Username:     username,
		FileName:     "rx.jpg",
		MimeType:     "image/jpeg",
		Content:      []byte{0xff, 0xd8, 0xff},
	}
}

func TestPrescriptionService_Upload(t *testing.T) {
	ctx := context.Background()

	newSvc := func(t *testing.T, ext RecordExtractor) (IPrescriptionService, *fakeFactory, *extractor.PatientArea, *recordingMailer, *recordingPublisher) {
		factory := newFakeFactory()
		factory.store.users = append(factory.store.users, &entity.User{Id: uuid.New(), Username: "asha", Email: "asha@example.com", Name: "Asha"})
		area := extractor.NewPatientArea(t.TempDir())
		mail := &recordingMailer{}
		pub := &recordingPublisher{}
		svc := NewPrescriptionService(factory, &memStorage{}, ext, area, mail, pub, time.Second, logger.NewNopLogger())
		return svc, factory, area, mail, pub
	}

	t.Run("extraction updates the patient documents", func(t *testing.T) {
		ext := &stubExtractor{extraction: &extractor.Extraction{
			Text: "Diagnosis: Migraine",
			Notification: &extractor.Notification{
				PatientInfo: map[string]interface{}{"name": "Asha"},
				Medications: []extractor.Medication{{Name: "Paracetamol", Morning: "yes"}},
				NextVisit:   extractor.NextVisit{Date: "2025-02-01", Reason: "review"},
			},
		}}
		svc, factory, area, mail, pub := newSvc(t, ext)

		res, err := svc.Upload(ctx, uploadRequest("asha"))
		require.NoError(t, err)
		assert.Equal(t, "Prescription uploaded successfully", res.Detail)
		assert.Equal(t, "https://files.example.com/rx.jpg", res.FileURL)
		assert.Equal(t, uint(1), res.Id)

		recordPath, _ := area.RecordPath("asha")
		_, err = os.Stat(recordPath)
		assert.NoError(t, err)

		notificationsPath, _ := area.NotificationsPath("asha")
		raw, err := extractor.ReadNotificationsRaw(notificationsPath)
		require.NoError(t, err)
		var entries []extractor.NotificationEntry
		require.NoError(t, json.Unmarshal([]byte(raw), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Paracetamol", entries[0].Medications[0].Name)

		require.Len(t, factory.store.prescriptions, 1)
		assert.Contains(t, string(factory.store.prescriptions[0].Extracted), "Migraine")
		assert.Equal(t, []string{events.PrescriptionProcessed}, pub.types())
		assert.Eventually(t, func() bool { return mail.reminderCount() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("extraction failure does not fail the upload", func(t *testing.T) {
		svc, factory, area, _, pub := newSvc(t, &stubExtractor{err: errors.New("model refused")})

		res, err := svc.Upload(ctx, uploadRequest("asha"))
		require.NoError(t, err)
		assert.NotZero(t, res.Id)
		assert.Len(t, factory.store.prescriptions, 1)
		assert.Empty(t, pub.types())

		recordPath, _ := area.RecordPath("asha")
		_, err = os.Stat(recordPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing notification block skips the JSON", func(t *testing.T) {
		svc, _, area, mail, _ := newSvc(t, &stubExtractor{extraction: &extractor.Extraction{Text: "free text only"}})

		_, err := svc.Upload(ctx, uploadRequest("asha"))
		require.NoError(t, err)

		notificationsPath, _ := area.NotificationsPath("asha")
		_, err = os.Stat(notificationsPath)
		assert.True(t, os.IsNotExist(err))
		assert.Zero(t, mail.reminderCount())
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _, _, _ := newSvc(t, &stubExtractor{})
		_, err := svc.Upload(ctx, uploadRequest("nobody"))
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("empty file", func(t *testing.T) {
		svc, _, _, _, _ := newSvc(t, &stubExtractor{})
		req := uploadRequest("asha")
		req.Content = nil
		_, err := svc.Upload(ctx, req)
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})
}

func TestPrescriptionService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	factory := newFakeFactory()
	factory.store.prescriptions = []*entity.Prescription{
		{Id: 1, Username: "asha", DoctorName: "Dr A", Extracted: []byte(`{"text":"x"}`)},
		{Id: 2, Username: "ravi", DoctorName: "Dr B"},
	}
	svc := NewPrescriptionService(factory, &memStorage{}, &stubExtractor{}, extractor.NewPatientArea(t.TempDir()), nil, nil, time.Second, logger.NewNopLogger())

	list, err := svc.ListByUsername(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dr A", list[0].DoctorName)
	encoded, err := json.Marshal(list[0])
	require.NoError(t, err)
	assert.True(t, bytes.Contains(encoded, []byte(`"extracted":{"text":"x"}`)))

	require.NoError(t, svc.Delete(ctx, 1))
	assert.True(t, apperror.Is(svc.Delete(ctx, 1), apperror.KindNotFound))
	assert.Len(t, factory.store.prescriptions, 1)
}
