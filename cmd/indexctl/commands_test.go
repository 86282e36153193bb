package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/pkg/vectorindex"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	hits       []vectorindex.Hit
	rebuildErr error
	lastK      int
}

func (s *stubIndex) IndexPost(ctx context.Context, post *entity.Post) error { return nil }
func (s *stubIndex) RetractPosts(ctx context.Context, ids []uuid.UUID) (int, error) {
	return 0, nil
}
func (s *stubIndex) Rebuild(ctx context.Context, progress vectorindex.Progress) (*dto.RebuildResponse, error) {
	if s.rebuildErr != nil {
		return nil, s.rebuildErr
	}
	for i := 1; i <= 3; i++ {
		if progress != nil {
			progress(i, 3)
		}
	}
	return &dto.RebuildResponse{Indexed: 3, Detail: "indexed 3 posts"}, nil
}
func (s *stubIndex) RequestRebuild(ctx context.Context, requestedBy string) error { return nil }
func (s *stubIndex) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	s.lastK = k
	return s.hits, nil
}
func (s *stubIndex) Stats(ctx context.Context) (*dto.IndexStatsResponse, error) {
	return &dto.IndexStatsResponse{Backend: "file", Entries: 3, Dimension: 768, Location: "data/index.gob"}, nil
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	color.NoColor = true
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func TestRunRebuild(t *testing.T) {
	t.Run("reports indexed count", func(t *testing.T) {
		cmd, out := newTestCmd()
		require.NoError(t, runRebuild(cmd, &stubIndex{}, io.Discard, false))
		assert.Contains(t, out.String(), "indexed 3 posts")
	})

	t.Run("propagates failure", func(t *testing.T) {
		cmd, out := newTestCmd()
		err := runRebuild(cmd, &stubIndex{rebuildErr: errors.New("embedding down")}, io.Discard, true)
		assert.EqualError(t, err, "embedding down")
		assert.Empty(t, out.String())
	})
}

func TestRunStats(t *testing.T) {
	cmd, out := newTestCmd()
	require.NoError(t, runStats(cmd, &stubIndex{}))
	assert.Contains(t, out.String(), "file")
	assert.Contains(t, out.String(), "768")
	assert.Contains(t, out.String(), "data/index.gob")
}

func TestRunSearch(t *testing.T) {
	tests := []struct {
		name     string
		hits     []vectorindex.Hit
		contains string
	}{
		{"no hits", nil, "no hits"},
		{"prints hits", []vectorindex.Hit{{Text: "drink water for a headache", Score: 0.91}}, "drink water for a headache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newTestCmd()
			idx := &stubIndex{hits: tt.hits}
			require.NoError(t, runSearch(cmd, idx, "headache", 4))
			assert.Contains(t, out.String(), tt.contains)
			assert.Equal(t, 4, idx.lastK)
		})
	}
}
