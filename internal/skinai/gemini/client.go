package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"skincare-backend/internal/analyses"
	"skincare-backend/internal/skinai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.4
)

// generator is the subset of *genai.GenerativeModel the client needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client implements skin analysis and transcription on Gemini.
type Client struct {
	client     *genai.Client
	model      string
	analyzer   generator
	transcribe generator
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	analyzer := gc.GenerativeModel(model)
	analyzer.SetTemperature(defaultTemperature)
	analyzer.ResponseMIMEType = "application/json"
	analyzer.ResponseSchema = analysisSchema()

	return &Client{
		client:     gc,
		model:      model,
		analyzer:   analyzer,
		transcribe: gc.GenerativeModel(model),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Analyze sends the prompt and photo and parses the structured result.
func (c *Client) Analyze(ctx context.Context, input analyses.AnalyzeInput) (analyses.Metrics, error) {
	prompt, err := skinai.AnalyzePrompt(input.Profile, input.Language)
	if err != nil {
		return analyses.Metrics{}, err
	}
	resp, err := c.analyzer.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeOrDefault(input.MimeType, "image/jpeg"), Data: input.Image},
	)
	if err != nil {
		return analyses.Metrics{}, fmt.Errorf("gemini analyze: %w", err)
	}
	return skinai.ParseAnalysis(responseText(resp))
}

// Transcribe returns the spoken text in audio.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	resp, err := c.transcribe.GenerateContent(ctx,
		genai.Text(skinai.TranscribePrompt(language)),
		genai.Blob{MIMEType: mimeOrDefault(mimeType, "audio/wav"), Data: audio},
	)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	return strings.TrimSpace(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// first candidate only
		break
	}
	return sb.String()
}

func mimeOrDefault(mimeType, def string) string {
	if strings.TrimSpace(mimeType) == "" {
		return def
	}
	return mimeType
}

var (
	_ analyses.Analyzer  = (*Client)(nil)
	_ skinai.Transcriber = (*Client)(nil)
)
