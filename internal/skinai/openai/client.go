package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"skincare-backend/internal/analyses"
	"skincare-backend/internal/skinai"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 2048
	// speechPCM is raw 24kHz 16-bit mono, wrapped into WAV locally.
	speechPCM = openai.SpeechResponseFormat("pcm")
)

// api is the subset of *openai.Client used here.
type api interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Client implements analysis, transcription and speech on OpenAI.
type Client struct {
	api   api
	Model string
	Voice openai.SpeechVoice
}

// NewClient constructs an OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		Model: model,
		Voice: openai.VoiceNova,
	}, nil
}

// Analyze sends the prompt and photo as a vision chat request.
func (c *Client) Analyze(ctx context.Context, input analyses.AnalyzeInput) (analyses.Metrics, error) {
	prompt, err := skinai.AnalyzePrompt(input.Profile, input.Language)
	if err != nil {
		return analyses.Metrics{}, err
	}
	mimeType := input.MimeType
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(input.Image)

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailHigh,
					}},
				},
			},
		},
	}
	// Reasoning models take MaxCompletionTokens instead of MaxTokens.
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") || strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return analyses.Metrics{}, fmt.Errorf("openai analyze: %w", err)
	}
	if len(resp.Choices) == 0 {
		return analyses.Metrics{}, skinai.ErrEmptyResponse
	}
	return skinai.ParseAnalysis(resp.Choices[0].Message.Content)
}

// Transcribe runs Whisper on the recorded audio.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "recording" + extensionFor(mimeType),
		Language: baseLanguage(language),
		Prompt:   "Format any spoken numbers as digits.",
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Speak synthesizes text and returns WAV audio.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          c.Voice,
		ResponseFormat: speechPCM,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speak: %w", err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(pcm) == 0 {
		return []byte{}, nil
	}
	return skinai.PCMToWAV(pcm, skinai.SpeechSampleRate), nil
}

// extensionFor maps a MIME type to the file name Whisper uses to detect the
// container.
func extensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a", "audio/aac":
		return ".m4a"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".wav"
	}
}

// baseLanguage reduces tags like "en-US" to the ISO-639-1 code Whisper expects.
func baseLanguage(language string) string {
	lang := skinai.Language(language)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

var (
	_ analyses.Analyzer  = (*Client)(nil)
	_ skinai.Transcriber = (*Client)(nil)
	_ skinai.Speaker     = (*Client)(nil)
)
