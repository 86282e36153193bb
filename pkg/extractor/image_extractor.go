package extractor

import (
	"context"
	"errors"
	"fmt"

	"cognimed-be/pkg/llm"
)

var ErrEmptyImage = errors.New("extractor: image data is empty")

// Extraction is what the model read off a prescription image.
type Extraction struct {
	Text         string
	Notification *Notification
	Raw          string
}

// ImageExtractor turns a prescription photo into record text plus notification data.
type ImageExtractor struct {
	llm llm.LLMProvider
}

func NewImageExtractor(provider llm.LLMProvider) *ImageExtractor {
	return &ImageExtractor{llm: provider}
}

func (e *ImageExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	raw, err := e.llm.Generate(ctx, MedicalRecordPrompt,
		llm.WithImage(image, mimeType),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(4096),
	)
	if err != nil {
		return nil, fmt.Errorf("extract medical record: %w", err)
	}

	out := &Extraction{
		Text: StructuredText(raw),
		Raw:  raw,
	}
	if n, ok := ParseNotification(raw); ok {
		out.Notification = n
	}
	return out, nil
}
