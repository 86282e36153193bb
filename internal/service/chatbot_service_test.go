package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/repository/memory"
	"cognimed-be/pkg/embedding"
	"cognimed-be/pkg/extractor"
	"cognimed-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocuments(t *testing.T) IPatientDocumentService {
	t.Helper()
	return NewPatientDocumentService(extractor.NewPatientArea(t.TempDir()), memory.NewDocumentCache(time.Minute), logger.NewNopLogger())
}

func TestChatbotService_UsesRetrievedSnippets(t *testing.T) {
	ctx := context.Background()
	index := &fakeIndexService{hits: []vectorindex.Hit{{Text: "first hit"}, {Text: "second hit"}}}
	model := &recordingLLM{response: "drink water"}
	svc := NewChatbotService(newFakeFactory(), index, newTestDocuments(t), model, ChatbotOptions{}, logger.NewNopLogger())

	res, err := svc.Chat(ctx, &dto.ChatRequest{Message: "what helps?"})
	require.NoError(t, err)
	assert.Equal(t, "drink water", res.Response)
	assert.Equal(t, DefaultRetrieveK, index.lastK)
	assert.True(t, model.hadDeadline)

	prompt := model.lastPrompt()
	assert.Less(t, strings.Index(prompt, "first hit"), strings.Index(prompt, "second hit"))
	assert.Contains(t, prompt, "User question: what helps?")
	assert.NotContains(t, prompt, "medical record (PDF)")
}

func TestChatbotService_FallsBackToAllPosts(t *testing.T) {
	ctx := context.Background()

	factory := newFakeFactory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(factory.store, "post one", base, nil)
	seedPost(factory.store, "   ", base.Add(time.Minute), nil)
	seedPost(factory.store, "post two", base.Add(2*time.Minute), nil)

	model := &recordingLLM{response: "ok"}
	svc := NewChatbotService(factory, &fakeIndexService{}, newTestDocuments(t), model, ChatbotOptions{}, logger.NewNopLogger())

	_, err := svc.Chat(ctx, &dto.ChatRequest{Message: "anything"})
	require.NoError(t, err)

	prompt := model.lastPrompt()
	assert.Contains(t, prompt, "post one")
	assert.Contains(t, prompt, "post two")
	assert.Less(t, strings.Index(prompt, "post one"), strings.Index(prompt, "post two"))
}

func TestChatbotService_SearchErrorFailsChat(t *testing.T) {
	tests := []struct {
		name      string
		searchErr error
	}{
		{"embedding failure", &vectorindex.EmbeddingError{Op: "search", Err: errors.New("embedding provider down")}},
		{"provider timeout", context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newFakeFactory()
			seedPost(factory.store, "post one", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

			model := &recordingLLM{response: "ok"}
			svc := NewChatbotService(factory, &fakeIndexService{searchErr: tt.searchErr}, newTestDocuments(t), model, ChatbotOptions{}, logger.NewNopLogger())

			res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "anything"})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.searchErr)
			assert.Empty(t, model.prompts, "no generation after a failed search")
		})
	}

	t.Run("embedding error keeps its type", func(t *testing.T) {
		svc := NewChatbotService(newFakeFactory(), &fakeIndexService{searchErr: &vectorindex.EmbeddingError{Op: "search", Err: errors.New("down")}},
			newTestDocuments(t), &recordingLLM{}, ChatbotOptions{}, logger.NewNopLogger())
		_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "anything"})
		var embErr *vectorindex.EmbeddingError
		assert.ErrorAs(t, err, &embErr)
	})
}

func TestChatbotService_GenerationError(t *testing.T) {
	model := &recordingLLM{err: errors.New("quota exceeded")}
	svc := NewChatbotService(newFakeFactory(), &fakeIndexService{}, newTestDocuments(t), model, ChatbotOptions{}, logger.NewNopLogger())

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindGeneration))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestChatbotService_PatientRecord(t *testing.T) {
	ctx := context.Background()
	area := extractor.NewPatientArea(t.TempDir())
	docs := NewPatientDocumentService(area, memory.NewDocumentCache(time.Minute), logger.NewNopLogger())

	recordPath, err := area.RecordPath("asha")
	require.NoError(t, err)
	require.NoError(t, extractor.AppendRecordSection(recordPath, extractor.Section{
		Title:   "Visit",
		Content: "Diagnosis: Migraine",
	}))

	model := &recordingLLM{response: "ok"}
	svc := NewChatbotService(newFakeFactory(), &fakeIndexService{hits: []vectorindex.Hit{{Text: "rest helps"}}}, docs, model, ChatbotOptions{}, logger.NewNopLogger())

	_, err = svc.Chat(ctx, &dto.ChatRequest{Message: "what do I have?", PatientUsername: "asha"})
	require.NoError(t, err)

	prompt := model.lastPrompt()
	assert.Contains(t, prompt, "medical record (PDF)")
	assert.Contains(t, strings.Join(strings.Fields(prompt), ""), "Migraine")

	t.Run("unknown patient has no record section", func(t *testing.T) {
		_, err := svc.Chat(ctx, &dto.ChatRequest{Message: "q", PatientUsername: "nobody"})
		require.NoError(t, err)
		assert.NotContains(t, model.lastPrompt(), "medical record (PDF)")
	})

	t.Run("invalid username", func(t *testing.T) {
		_, err := svc.Chat(ctx, &dto.ChatRequest{Message: "q", PatientUsername: "../etc"})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})
}

func TestChatbotService_CorruptRecordReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	area := extractor.NewPatientArea(t.TempDir())
	docs := NewPatientDocumentService(area, memory.NewDocumentCache(time.Minute), logger.NewNopLogger())

	recordPath, err := area.RecordPath("asha")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(recordPath), 0o755))
	require.NoError(t, os.WriteFile(recordPath, []byte("not a pdf at all"), 0o644))

	model := &recordingLLM{response: "ok"}
	svc := NewChatbotService(newFakeFactory(), &fakeIndexService{hits: []vectorindex.Hit{{Text: "rest helps"}}}, docs, model, ChatbotOptions{}, logger.NewNopLogger())

	res, err := svc.Chat(ctx, &dto.ChatRequest{Message: "what do I have?", PatientUsername: "asha"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Response)
	assert.NotContains(t, model.lastPrompt(), "medical record (PDF)")
	assert.Contains(t, model.lastPrompt(), "rest helps")

	text, err := docs.RecordText(ctx, "asha")
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = svc.AskMedicine(ctx, &dto.AskMedicineRequest{PatientUsername: "asha", Image: []byte{0xff, 0xd8}})
	require.NoError(t, err)
}

func TestChatbotService_AskMedicine(t *testing.T) {
	ctx := context.Background()
	area := extractor.NewPatientArea(t.TempDir())
	docs := NewPatientDocumentService(area, nil, logger.NewNopLogger())

	notificationsPath, err := area.NotificationsPath("asha")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(notificationsPath), 0o755))
	require.NoError(t, os.WriteFile(notificationsPath, []byte(`[{"medications":[{"name":"Paracetamol"}]}]`), 0o644))

	model := &recordingLLM{response: "It is paracetamol"}
	svc := NewChatbotService(newFakeFactory(), &fakeIndexService{}, docs, model, ChatbotOptions{}, logger.NewNopLogger())

	res, err := svc.AskMedicine(ctx, &dto.AskMedicineRequest{PatientUsername: "asha", Image: []byte{0xff, 0xd8}, MimeType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "It is paracetamol", res.Response)
	assert.Contains(t, model.lastPrompt(), "Paracetamol")
	require.Len(t, model.opts.Images, 1)
	assert.Equal(t, "image/jpeg", model.opts.Images[0].MimeType)

	_, err = svc.AskMedicine(ctx, &dto.AskMedicineRequest{PatientUsername: "asha"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

// End to end with the offline embedder: the post sharing the query's words
// is ranked ahead of the unrelated one.
func TestChatbotService_HeadacheRemedy(t *testing.T) {
	ctx := context.Background()
	factory := newFakeFactory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(factory.store, "My knee hurts after running", base, nil)
	seedPost(factory.store, "Best headache remedy: ginger tea and rest", base.Add(time.Minute), nil)

	fileIndex := NewFileIndex(filepath.Join(t.TempDir(), "posts.gob"), embedding.NewHashingProvider(256))
	indexSvc := NewIndexService(fileIndex, factory, nil, "", logger.NewNopLogger())

	rebuilt, err := indexSvc.Rebuild(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rebuilt.Indexed)

	model := &recordingLLM{response: "ginger tea"}
	svc := NewChatbotService(factory, indexSvc, newTestDocuments(t), model, ChatbotOptions{}, logger.NewNopLogger())

	_, err = svc.Chat(ctx, &dto.ChatRequest{Message: "headache remedy"})
	require.NoError(t, err)

	prompt := model.lastPrompt()
	a := strings.Index(prompt, "Best headache remedy")
	b := strings.Index(prompt, "My knee hurts")
	require.GreaterOrEqual(t, a, 0)
	require.GreaterOrEqual(t, b, 0)
	assert.Less(t, a, b)
}
