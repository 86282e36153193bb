package service

import (
	"context"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/pkg/events"

	"github.com/google/uuid"
)

const postModule = "PostService"

type IPostService interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error)
	List(ctx context.Context, req *dto.ListPostsRequest) ([]dto.PostResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.PostResponse, error)
}

type postService struct {
	uowFactory unitofwork.RepositoryFactory
	index      IIndexService
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

// NewPostService accepts a nil publisher when no event bus is configured.
func NewPostService(uowFactory unitofwork.RepositoryFactory, index IIndexService, publisher events.Publisher, log logger.ILogger) IPostService {
	return &postService{
		uowFactory: uowFactory,
		index:      index,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

func (s *postService) Create(ctx context.Context, actor entity.Actor, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	post := &entity.Post{
		Id:          uuid.New(),
		Text:        req.Text,
		CreatedTime: s.now().UTC(),
		ParentId:    req.ParentId,
	}
	post.UserId, post.DoctorId = actor.Owner()

	if req.ParentId != nil {
		parent, err := uow.PostRepository().FindOne(ctx, specification.ByPostID{ID: *req.ParentId})
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperror.NotFound("Parent post not found")
		}
		if err := s.checkAncestry(ctx, uow, post.Id, *req.ParentId); err != nil {
			return nil, err
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.PostRepository().Create(ctx, post); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	status := dto.IndexStatusIndexed
	if err := s.index.IndexPost(ctx, post); err != nil {
		status = dto.IndexStatusFailed
	}

	s.publish(ctx, events.PostCreated, post)

	return &dto.CreatePostResponse{
		PostResponse: toPostResponse(post),
		IndexStatus:  status,
	}, nil
}

// checkAncestry walks from parentId to the root and fails on a revisit or on
// meeting the new post's own id.
func (s *postService) checkAncestry(ctx context.Context, uow unitofwork.UnitOfWork, selfId, parentId uuid.UUID) error {
	visited := map[uuid.UUID]struct{}{selfId: {}}
	current := &parentId
	for current != nil {
		if _, seen := visited[*current]; seen {
			return apperror.Validation("Reply would create a cycle")
		}
		visited[*current] = struct{}{}

		next, err := uow.PostRepository().ParentOf(ctx, *current)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (s *postService) List(ctx context.Context, req *dto.ListPostsRequest) ([]dto.PostResponse, error) {
	specs := []specification.Specification{
		specification.TopLevel{},
		specification.WithReplies{},
		specification.OrderBy{Field: "created_time", Desc: true},
	}
	if req.Limit > 0 || req.Skip > 0 {
		limit := req.Limit
		if limit == 0 {
			limit = -1
		}
		specs = append(specs, specification.Pagination{Limit: limit, Offset: req.Skip})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	posts, err := uow.PostRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return toPostResponses(posts), nil
}

func (s *postService) Show(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	post, err := uow.PostRepository().FindOne(ctx, specification.ByPostID{ID: id}, specification.WithReplies{})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("Post not found")
	}
	res := toPostResponse(post)
	return &res, nil
}

// Delete removes the post with its whole reply subtree. Index retraction is
// best-effort; a failure leaves stale entries until the next rebuild.
func (s *postService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.PostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	post, err := uow.PostRepository().FindOne(ctx, specification.ByPostID{ID: id})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("Post not found")
	}

	ids, err := uow.PostRepository().SubtreeIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.PostRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	retracted, _ := s.index.RetractPosts(ctx, ids)
	s.logger.Info(postModule, "Post deleted", map[string]interface{}{
		"post_id":   id.String(),
		"by":        actor.Username,
		"subtree":   len(ids),
		"retracted": retracted,
	})

	s.publish(ctx, events.PostDeleted, post)

	res := toPostResponse(post)
	return &res, nil
}

func (s *postService) publish(ctx context.Context, eventType string, post *entity.Post) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"post_id":      post.Id.String(),
		"text":         post.Text,
		"created_time": post.CreatedTime.Format(time.RFC3339Nano),
	}
	if post.ParentId != nil {
		payload["parent_id"] = post.ParentId.String()
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.logger.Warn(postModule, "Event publish failed", map[string]interface{}{
			"event": eventType,
			"error": err,
		})
	}
}

func toPostResponse(p *entity.Post) dto.PostResponse {
	return dto.PostResponse{
		PostId:      p.Id,
		Text:        p.Text,
		CreatedTime: p.CreatedTime,
		ParentId:    p.ParentId,
		UserId:      p.UserId,
		DoctorId:    p.DoctorId,
		Replies:     toPostResponses(p.Replies),
	}
}

func toPostResponses(posts []*entity.Post) []dto.PostResponse {
	res := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		res = append(res, toPostResponse(p))
	}
	return res
}
