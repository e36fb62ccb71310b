package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/evidware/case-api/models"
)

// Responder answers free-text questions about a case. Each call is stateless
// with respect to prior turns; the caller owns any transcript.
type Responder struct {
	chat        chatCompleter
	visionModel string
	textModel   string
}

// NewResponder returns a responder. The vision model is used when the case
// carries images, the lighter text model otherwise.
func NewResponder(chat chatCompleter, visionModel, textModel string) *Responder {
	return &Responder{chat: chat, visionModel: visionModel, textModel: textModel}
}

// Ask sends the case context, the question, and any image references to the
// model and returns its answer verbatim.
func (r *Responder) Ask(ctx context.Context, caseItem *models.Case, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	content := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf(`%s

User Question: %s

Please provide a detailed, helpful answer based on the case information above. If images are available, reference what you can see in them. Be specific and professional in your response.`,
				chatCaseContext(caseItem), question),
		},
	}
	content = append(content, imageParts(caseItem.Images)...)

	model := r.textModel
	if len(caseItem.Images) > 0 {
		model = r.visionModel
	}

	resp, err := r.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: chatSystemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: content,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to process question: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("failed to process question: empty response from model")
	}

	return resp.Choices[0].Message.Content, nil
}
