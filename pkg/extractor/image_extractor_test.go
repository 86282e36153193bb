package extractor

import (
	"context"
	"errors"
	"testing"

	"cognimed-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	response string
	err      error
	opts     *llm.Options
	prompt   string
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.prompt = prompt
	s.opts = llm.Apply(llm.Options{}, opts...)
	return s.response, s.err
}

func TestImageExtractor_Extract(t *testing.T) {
	stub := &stubLLM{response: sampleResponse}
	e := NewImageExtractor(stub)

	out, err := e.Extract(context.Background(), []byte{0xff, 0xd8}, "image/png")
	require.NoError(t, err)

	assert.Equal(t, MedicalRecordPrompt, stub.prompt)
	require.Len(t, stub.opts.Images, 1)
	assert.Equal(t, "image/png", stub.opts.Images[0].MimeType)
	assert.InDelta(t, 0.1, stub.opts.Temperature, 1e-9)

	assert.True(t, len(out.Text) > 0)
	assert.NotContains(t, out.Text, "```")
	require.NotNil(t, out.Notification)
	assert.Equal(t, "Sumatriptan", out.Notification.Medications[0].Name)
}

func TestImageExtractor_NoJSONBlock(t *testing.T) {
	e := NewImageExtractor(&stubLLM{response: "Vitals: normal"})

	out, err := e.Extract(context.Background(), []byte{1}, "")
	require.NoError(t, err)
	assert.Equal(t, "Vitals: normal", out.Text)
	assert.Nil(t, out.Notification)
}

func TestImageExtractor_Errors(t *testing.T) {
	_, err := NewImageExtractor(&stubLLM{}).Extract(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyImage)

	boom := errors.New("quota exceeded")
	_, err = NewImageExtractor(&stubLLM{err: boom}).Extract(context.Background(), []byte{1}, "")
	assert.ErrorIs(t, err, boom)
}
