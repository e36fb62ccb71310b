// Package ai holds the vision analysis and chat components. Both send case
// metadata and hosted image URLs to a chat-completion model at a fixed low
// temperature and surface upstream failures to the caller; neither retries.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evidware/case-api/models"
)

// ErrNoImages is returned when analysis is requested for a case that has no
// images attached.
var ErrNoImages = errors.New("no images found to analyze")

// ErrEmptyQuestion is returned when a chat turn carries a blank question.
var ErrEmptyQuestion = errors.New("question is required")

// chatCompleter is the slice of the OpenAI client this package needs.
// *openai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Analyzer runs a vision analysis over every image attached to a case and
// parses the free-text reply into a summary plus per-image insights.
type Analyzer struct {
	chat  chatCompleter
	model string
}

// NewAnalyzer returns an analyzer using the given vision-capable model.
func NewAnalyzer(chat chatCompleter, model string) *Analyzer {
	return &Analyzer{chat: chat, model: model}
}

// Analyze sends the case context and all image references to the model and
// returns the parsed analysis. The result replaces any prior analysis
// wholesale; persistence is the caller's job.
func (a *Analyzer) Analyze(ctx context.Context, caseItem *models.Case) (*models.AIAnalysis, error) {
	if len(caseItem.Images) == 0 {
		return nil, ErrNoImages
	}

	content := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf(analysisPromptTemplate, analysisCaseContext(caseItem)),
		},
	}
	content = append(content, imageParts(caseItem.Images)...)

	resp, err := a.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: content,
			},
		},
		// Low temperature biases toward literal, low-variance output.
		// No token cap: the model responds in full.
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze case: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("failed to analyze case: empty response from model")
	}

	summary, insights := parseAnalysis(resp.Choices[0].Message.Content)

	return &models.AIAnalysis{
		Summary:    summary,
		Insights:   insights,
		AnalyzedAt: primitive.NewDateTimeFromTime(time.Now()),
	}, nil
}

// imageParts renders one image_url part per image, preferring the secure
// URL, then the plain URL, then raw bytes embedded as a data URL (records
// that predate hosted storage). Images with none of the three are skipped.
func imageParts(images []models.CaseImage) []openai.ChatMessagePart {
	var parts []openai.ChatMessagePart
	for _, image := range images {
		url := image.SecureURL
		if url == "" {
			url = image.URL
		}
		if url == "" && len(image.Data) > 0 {
			url = fmt.Sprintf("data:%s;base64,%s", image.ContentType, base64.StdEncoding.EncodeToString(image.Data))
		}
		if url == "" {
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: url,
			},
		})
	}
	return parts
}
