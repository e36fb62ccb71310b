package ai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/evidware/case-api/models"
)

type stubChat struct {
	calls   int
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.lastReq = req
	return s.resp, s.err
}

func chatResponse(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: text}},
		},
	}
}

func TestAnalyzeNoImages(t *testing.T) {
	chat := &stubChat{}
	analyzer := NewAnalyzer(chat, "gpt-4o")

	analysis, err := analyzer.Analyze(context.Background(), &models.Case{IncidentTitle: "Warehouse break-in"})

	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Zero(t, chat.calls)
}

func TestAnalyzeParsesResponse(t *testing.T) {
	chat := &stubChat{resp: chatResponse("Image 1: Tire tracks in gravel.\nImage 2: A cut padlock on the gate.")}
	analyzer := NewAnalyzer(chat, "gpt-4o")

	caseItem := &models.Case{
		IncidentTitle: "Warehouse break-in",
		Images: []models.CaseImage{
			{SecureURL: "https://img.example/one.jpg"},
			{URL: "http://img.example/two.jpg"},
		},
	}

	analysis, err := analyzer.Analyze(context.Background(), caseItem)

	assert.NoError(t, err)
	assert.Equal(t, "Tire tracks in gravel.", analysis.Summary)
	assert.Equal(t, []string{
		"**Image 1 Observations:** Tire tracks in gravel.",
		"**Image 2 Observations:** A cut padlock on the gate.",
	}, analysis.Insights)
	assert.NotZero(t, analysis.AnalyzedAt)

	assert.Equal(t, "gpt-4o", chat.lastReq.Model)
	assert.Equal(t, float32(0.1), chat.lastReq.Temperature)
	assert.Zero(t, chat.lastReq.MaxTokens)
}

func TestAnalyzeImagePartPreference(t *testing.T) {
	chat := &stubChat{resp: chatResponse("Image 1: fine.")}
	analyzer := NewAnalyzer(chat, "gpt-4o")

	caseItem := &models.Case{
		Images: []models.CaseImage{
			{SecureURL: "https://img.example/secure.jpg", URL: "http://img.example/plain.jpg"},
			{URL: "http://img.example/plain.jpg"},
			{Data: []byte{0xff, 0xd8}, ContentType: "image/jpeg"},
			{},
		},
	}

	_, err := analyzer.Analyze(context.Background(), caseItem)
	assert.NoError(t, err)

	parts := chat.lastReq.Messages[0].MultiContent
	// one text part, then one image part per usable image
	assert.Len(t, parts, 4)
	assert.Equal(t, "https://img.example/secure.jpg", parts[1].ImageURL.URL)
	assert.Equal(t, "http://img.example/plain.jpg", parts[2].ImageURL.URL)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", parts[3].ImageURL.URL)
}

func TestAnalyzeUpstreamError(t *testing.T) {
	chat := &stubChat{err: errors.New("rate limited")}
	analyzer := NewAnalyzer(chat, "gpt-4o")

	caseItem := &models.Case{Images: []models.CaseImage{{URL: "http://img.example/one.jpg"}}}

	analysis, err := analyzer.Analyze(context.Background(), caseItem)

	assert.Nil(t, analysis)
	assert.ErrorContains(t, err, "failed to analyze case")
	assert.ErrorContains(t, err, "rate limited")
}

func TestAnalyzeEmptyChoices(t *testing.T) {
	chat := &stubChat{}
	analyzer := NewAnalyzer(chat, "gpt-4o")

	caseItem := &models.Case{Images: []models.CaseImage{{URL: "http://img.example/one.jpg"}}}

	_, err := analyzer.Analyze(context.Background(), caseItem)
	assert.ErrorContains(t, err, "empty response from model")
}
