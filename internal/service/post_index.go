package service

import (
	"context"
	"fmt"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/repository/unitofwork"
	"cognimed-be/pkg/embedding"
	"cognimed-be/pkg/vectorindex"

	"github.com/google/uuid"
)

const (
	BackendFile     = "file"
	BackendPgvector = "pgvector"

	pgvectorDimension = 768
)

// PostIndex is the storage behind the index maintenance protocol.
type PostIndex interface {
	Append(ctx context.Context, text string, metadata map[string]string) error
	Retract(ctx context.Context, postIds []uuid.UUID) (int, error)
	Rebuild(ctx context.Context, texts []string, metadatas []map[string]string, progress vectorindex.Progress) (int, error)
	Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error)
	Stats(ctx context.Context) (*dto.IndexStatsResponse, error)
}

// PostMetadata is the metadata stored with every indexed post.
func PostMetadata(post *entity.Post) map[string]string {
	meta := map[string]string{
		vectorindex.MetaPostID:      post.Id.String(),
		vectorindex.MetaUserID:      "",
		vectorindex.MetaDoctorID:    "",
		vectorindex.MetaCreatedTime: post.CreatedTime.UTC().Format(time.RFC3339Nano),
	}
	if post.UserId != nil {
		meta[vectorindex.MetaUserID] = post.UserId.String()
	}
	if post.DoctorId != nil {
		meta[vectorindex.MetaDoctorID] = post.DoctorId.String()
	}
	return meta
}

// fileIndex keeps the index in one gob file behind a single writer.
type fileIndex struct {
	writer *vectorindex.Writer
}

func NewFileIndex(path string, embedder embedding.EmbeddingProvider) PostIndex {
	return &fileIndex{writer: vectorindex.NewWriter(vectorindex.NewStore(path, embedder))}
}

func (f *fileIndex) Append(ctx context.Context, text string, metadata map[string]string) error {
	_, err := f.writer.Append(ctx, text, metadata)
	return err
}

func (f *fileIndex) Retract(ctx context.Context, postIds []uuid.UUID) (int, error) {
	ids := make([]string, len(postIds))
	for i, id := range postIds {
		ids[i] = id.String()
	}
	return f.writer.Retract(ctx, ids...)
}

func (f *fileIndex) Rebuild(ctx context.Context, texts []string, metadatas []map[string]string, progress vectorindex.Progress) (int, error) {
	return f.writer.Replace(ctx, texts, metadatas, progress)
}

func (f *fileIndex) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	store := f.writer.Store()
	idx, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return store.Search(ctx, idx, query, k)
}

func (f *fileIndex) Stats(ctx context.Context) (*dto.IndexStatsResponse, error) {
	store := f.writer.Store()
	idx, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	stats := &dto.IndexStatsResponse{Backend: BackendFile, Location: store.Path(), Entries: idx.Len()}
	if idx != nil {
		stats.Dimension = idx.Dimension
	}
	return stats, nil
}

// pgvectorIndex stores one row per entry in post_embeddings.
type pgvectorIndex struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
}

func NewPgvectorIndex(uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider) PostIndex {
	return &pgvectorIndex{uowFactory: uowFactory, embedder: embedder}
}

// CheckPgvectorDimension embeds a sample text and fails with
// vectorindex.ErrDimensionMismatch when the provider's vector length does not
// fit the vector(768) column. Provider errors come back as EmbeddingError.
func CheckPgvectorDimension(ctx context.Context, embedder embedding.EmbeddingProvider) error {
	_, err := (&pgvectorIndex{embedder: embedder}).embed(ctx, "dimension check", "dimension check", embedding.TaskRetrievalQuery)
	return err
}

func (p *pgvectorIndex) embed(ctx context.Context, op, text, taskType string) ([]float32, error) {
	res, err := p.embedder.Generate(ctx, text, taskType)
	if err != nil {
		return nil, &vectorindex.EmbeddingError{Op: op, Err: err}
	}
	if len(res.Embedding.Values) != pgvectorDimension {
		return nil, fmt.Errorf("%w: got %d, column is vector(%d)", vectorindex.ErrDimensionMismatch, len(res.Embedding.Values), pgvectorDimension)
	}
	return res.Embedding.Values, nil
}

func (p *pgvectorIndex) toEmbedding(ctx context.Context, op, text string, metadata map[string]string) (*entity.PostEmbedding, error) {
	postId, err := uuid.Parse(metadata[vectorindex.MetaPostID])
	if err != nil {
		return nil, fmt.Errorf("%w: metadata post_id %q", vectorindex.ErrValidation, metadata[vectorindex.MetaPostID])
	}
	vec, err := p.embed(ctx, op, text, embedding.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	return &entity.PostEmbedding{
		Id:             uuid.New(),
		PostId:         postId,
		Document:       text,
		EmbeddingValue: vec,
		Metadata:       metadata,
	}, nil
}

func (p *pgvectorIndex) Append(ctx context.Context, text string, metadata map[string]string) error {
	e, err := p.toEmbedding(ctx, "add", text, metadata)
	if err != nil {
		return err
	}
	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.PostEmbeddingRepository().Create(ctx, e)
}

func (p *pgvectorIndex) Retract(ctx context.Context, postIds []uuid.UUID) (int, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.PostEmbeddingRepository().DeleteByPostIds(ctx, postIds)
	return int(n), err
}

func (p *pgvectorIndex) Rebuild(ctx context.Context, texts []string, metadatas []map[string]string, progress vectorindex.Progress) (int, error) {
	if len(texts) == 0 || len(texts) != len(metadatas) {
		return 0, fmt.Errorf("%w: %d texts, %d metadatas", vectorindex.ErrValidation, len(texts), len(metadatas))
	}

	rows := make([]*entity.PostEmbedding, len(texts))
	for i, text := range texts {
		e, err := p.toEmbedding(ctx, "build", text, metadatas[i])
		if err != nil {
			return 0, err
		}
		rows[i] = e
		if progress != nil {
			progress(i+1, len(texts))
		}
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	if err := uow.PostEmbeddingRepository().DeleteAll(ctx); err != nil {
		return 0, err
	}
	if err := uow.PostEmbeddingRepository().CreateBulk(ctx, rows); err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (p *pgvectorIndex) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative, got %d", vectorindex.ErrValidation, k)
	}
	if k == 0 {
		return []vectorindex.Hit{}, nil
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.PostEmbeddingRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []vectorindex.Hit{}, nil
	}

	vec, err := p.embed(ctx, "search", query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	scored, err := uow.PostEmbeddingRepository().SearchSimilarWithScore(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	hits := make([]vectorindex.Hit, len(scored))
	for i, s := range scored {
		hits[i] = vectorindex.Hit{Text: s.Document, Metadata: s.Metadata, Score: s.Similarity}
	}
	return hits, nil
}

func (p *pgvectorIndex) Stats(ctx context.Context) (*dto.IndexStatsResponse, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.PostEmbeddingRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.IndexStatsResponse{
		Backend:   BackendPgvector,
		Entries:   int(count),
		Dimension: pgvectorDimension,
		Location:  "post_embeddings",
	}, nil
}
