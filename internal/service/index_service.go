package service

import (
	"context"
	"encoding/json"
	"fmt"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const indexModule = "IndexService"

type IIndexService interface {
	// IndexPost appends one committed post. Failures are logged and returned
	// so the caller can report them; they never undo the post.
	IndexPost(ctx context.Context, post *entity.Post) error
	RetractPosts(ctx context.Context, postIds []uuid.UUID) (int, error)
	// Rebuild re-embeds every post with non-empty text and replaces the index.
	Rebuild(ctx context.Context, progress vectorindex.Progress) (*dto.RebuildResponse, error)
	// RequestRebuild queues a rebuild for the background consumer.
	RequestRebuild(ctx context.Context, requestedBy string) error
	Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error)
	Stats(ctx context.Context) (*dto.IndexStatsResponse, error)
}

type indexService struct {
	index      PostIndex
	uowFactory unitofwork.RepositoryFactory
	publisher  message.Publisher
	topic      string
	logger     logger.ILogger
}

func NewIndexService(index PostIndex, uowFactory unitofwork.RepositoryFactory, publisher message.Publisher, topic string, log logger.ILogger) IIndexService {
	return &indexService{
		index:      index,
		uowFactory: uowFactory,
		publisher:  publisher,
		topic:      topic,
		logger:     log,
	}
}

func (s *indexService) IndexPost(ctx context.Context, post *entity.Post) error {
	if post.Text == "" {
		return nil
	}
	if err := s.index.Append(ctx, post.Text, PostMetadata(post)); err != nil {
		s.logger.Error(indexModule, "Index append failed", map[string]interface{}{
			"post_id": post.Id.String(),
			"error":   err,
		})
		return err
	}
	s.logger.Info(indexModule, "Post indexed", map[string]interface{}{"post_id": post.Id.String()})
	return nil
}

func (s *indexService) RetractPosts(ctx context.Context, postIds []uuid.UUID) (int, error) {
	if len(postIds) == 0 {
		return 0, nil
	}
	n, err := s.index.Retract(ctx, postIds)
	if err != nil {
		s.logger.Warn(indexModule, "Index retraction failed; a rebuild will repair it", map[string]interface{}{
			"post_ids": postIds,
			"error":    err,
		})
		return 0, err
	}
	return n, nil
}

func (s *indexService) Rebuild(ctx context.Context, progress vectorindex.Progress) (*dto.RebuildResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	posts, err := uow.PostRepository().FindAll(ctx,
		specification.NonEmptyText{},
		specification.OrderBy{Field: "created_time"},
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if len(posts) == 0 {
		s.logger.Info(indexModule, "Nothing to index", nil)
		return &dto.RebuildResponse{Indexed: 0, Detail: "nothing to index"}, nil
	}

	texts := make([]string, len(posts))
	metas := make([]map[string]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
		metas[i] = PostMetadata(p)
	}

	n, err := s.index.Rebuild(ctx, texts, metas, progress)
	if err != nil {
		s.logger.Error(indexModule, "Index rebuild failed", map[string]interface{}{"error": err})
		return nil, err
	}

	s.logger.Info(indexModule, "Index rebuilt", map[string]interface{}{"entries": n})
	return &dto.RebuildResponse{Indexed: n, Detail: fmt.Sprintf("indexed %d posts", n)}, nil
}

func (s *indexService) RequestRebuild(ctx context.Context, requestedBy string) error {
	if s.publisher == nil {
		return fmt.Errorf("rebuild queue not configured")
	}
	payload, err := json.Marshal(dto.RebuildJobMessage{RequestedBy: requestedBy})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := s.publisher.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("enqueue rebuild: %w", err)
	}
	s.logger.Info(indexModule, "Rebuild requested", map[string]interface{}{"requested_by": requestedBy})
	return nil
}

func (s *indexService) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	return s.index.Search(ctx, query, k)
}

func (s *indexService) Stats(ctx context.Context) (*dto.IndexStatsResponse, error) {
	return s.index.Stats(ctx)
}
