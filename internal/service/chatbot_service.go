package service

import (
	"context"
	"fmt"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/pkg/llm"
	"cognimed-be/pkg/rag/prompt"
)

const (
	chatbotModule = "ChatbotService"

	DefaultRetrieveK = 10
)

type IChatbotService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	AskMedicine(ctx context.Context, req *dto.AskMedicineRequest) (*dto.ChatResponse, error)
}

type ChatbotOptions struct {
	RetrieveK       int
	PromptMaxChars  int
	ProviderTimeout time.Duration
}

type chatbotService struct {
	uowFactory unitofwork.RepositoryFactory
	index      IIndexService
	documents  IPatientDocumentService
	llm        llm.LLMProvider
	opts       ChatbotOptions
	logger     logger.ILogger
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	index IIndexService,
	documents IPatientDocumentService,
	llmProvider llm.LLMProvider,
	opts ChatbotOptions,
	log logger.ILogger,
) IChatbotService {
	if opts.RetrieveK <= 0 {
		opts.RetrieveK = DefaultRetrieveK
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 60 * time.Second
	}
	return &chatbotService{
		uowFactory: uowFactory,
		index:      index,
		documents:  documents,
		llm:        llmProvider,
		opts:       opts,
		logger:     log,
	}
}

func (s *chatbotService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	snippets, err := s.retrieve(ctx, req.Message)
	if err != nil {
		return nil, err
	}

	var patientText string
	if req.PatientUsername != "" {
		patientText, err = s.documents.RecordText(ctx, req.PatientUsername)
		if err != nil {
			return nil, err
		}
	}

	p := prompt.NewContextBuilder(req.Message, snippets, patientText).
		WithBudget(s.opts.PromptMaxChars).
		Build()

	answer, err := s.generate(ctx, p)
	if err != nil {
		return nil, err
	}
	return &dto.ChatResponse{Response: answer}, nil
}

// retrieve returns the top-k post texts, or every post's text when the index
// is absent or has no matches. A search error is returned as is.
func (s *chatbotService) retrieve(ctx context.Context, query string) ([]string, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	hits, err := s.index.Search(searchCtx, query, s.opts.RetrieveK)
	cancel()

	if err != nil {
		s.logger.Error(chatbotModule, "Index search failed", map[string]interface{}{"error": err})
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) > 0 {
		snippets := make([]string, len(hits))
		for i, h := range hits {
			snippets[i] = h.Text
		}
		return snippets, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	posts, err := uow.PostRepository().FindAll(ctx,
		specification.NonEmptyText{},
		specification.OrderBy{Field: "created_time"},
	)
	if err != nil {
		return nil, err
	}

	snippets := make([]string, len(posts))
	for i, p := range posts {
		snippets[i] = p.Text
	}
	s.logger.Info(chatbotModule, "Using fallback context", map[string]interface{}{"posts": len(snippets)})
	return snippets, nil
}

func (s *chatbotService) generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()

	answer, err := s.llm.Generate(genCtx, p, opts...)
	if err != nil {
		s.logger.Error(chatbotModule, "Generation failed", map[string]interface{}{"error": err})
		return "", apperror.Generation(err)
	}
	return answer, nil
}

func (s *chatbotService) AskMedicine(ctx context.Context, req *dto.AskMedicineRequest) (*dto.ChatResponse, error) {
	if len(req.Image) == 0 {
		return nil, apperror.Validation("medicine image is required")
	}

	record, err := s.documents.RecordText(ctx, req.PatientUsername)
	if err != nil {
		return nil, err
	}
	notifications, err := s.documents.NotificationsText(ctx, req.PatientUsername)
	if err != nil {
		return nil, err
	}

	p := prompt.NewMedicineBuilder(record, notifications).Build()
	answer, err := s.generate(ctx, p, llm.WithImage(req.Image, req.MimeType))
	if err != nil {
		return nil, err
	}
	return &dto.ChatResponse{Response: answer}, nil
}
