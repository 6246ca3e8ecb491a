package transcription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kerem/learnly/internal/pkg/apperrors"
)

// Segment is one timed piece of a transcription.
type Segment struct {
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	Text         string  `json:"text"`
}

// Result is a full transcription: the joined text plus its segments.
type Result struct {
	Text     string
	Segments []Segment
}

// Provider transcribes a hosted video into timed text segments.
type Provider interface {
	Transcribe(ctx context.Context, videoURL string) (*Result, error)
}

// Config holds settings for the HTTP transcription provider.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPProvider calls an external transcription API.
type HTTPProvider struct {
	client *resty.Client
}

// NewHTTPProvider creates a provider backed by the configured API.
func NewHTTPProvider(cfg Config) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPProvider{client: client}
}

type transcribeRequest struct {
	VideoURL string `json:"videoUrl"`
}

type transcribeResponse struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe sends the video URL to the API and assembles the result.
func (p *HTTPProvider) Transcribe(ctx context.Context, videoURL string) (*Result, error) {
	var body transcribeResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(transcribeRequest{VideoURL: videoURL}).
		SetResult(&body).
		Post("/v1/transcriptions")
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	if resp.IsError() {
		return nil, apperrors.NewCustomError(apperrors.ErrTranscriptionFailed,
			fmt.Sprintf("transcription API returned status %d", resp.StatusCode()))
	}

	result := &Result{Segments: make([]Segment, 0, len(body.Segments))}
	var texts []string
	for _, s := range body.Segments {
		result.Segments = append(result.Segments, Segment{
			StartSeconds: s.Start,
			EndSeconds:   s.End,
			Text:         s.Text,
		})
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
	}
	result.Text = strings.Join(texts, " ")

	return result, nil
}
