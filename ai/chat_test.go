package ai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/evidware/case-api/models"
)

func TestAskEmptyQuestion(t *testing.T) {
	chat := &stubChat{}
	responder := NewResponder(chat, "gpt-4o", "gpt-4o-mini")

	answer, err := responder.Ask(context.Background(), &models.Case{}, "   ")

	assert.Empty(t, answer)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, chat.calls)
}

func TestAskTextModelWithoutImages(t *testing.T) {
	chat := &stubChat{resp: chatResponse("No suspects have been identified yet.")}
	responder := NewResponder(chat, "gpt-4o", "gpt-4o-mini")

	caseItem := &models.Case{IncidentTitle: "Warehouse break-in"}

	answer, err := responder.Ask(context.Background(), caseItem, "Any suspects?")

	assert.NoError(t, err)
	assert.Equal(t, "No suspects have been identified yet.", answer)
	assert.Equal(t, "gpt-4o-mini", chat.lastReq.Model)
	assert.Equal(t, float32(0.1), chat.lastReq.Temperature)
}

func TestAskVisionModelWithImages(t *testing.T) {
	chat := &stubChat{resp: chatResponse("The photo shows a cut padlock.")}
	responder := NewResponder(chat, "gpt-4o", "gpt-4o-mini")

	caseItem := &models.Case{
		IncidentTitle: "Warehouse break-in",
		Images:        []models.CaseImage{{SecureURL: "https://img.example/one.jpg"}},
	}

	answer, err := responder.Ask(context.Background(), caseItem, "What do the photos show?")

	assert.NoError(t, err)
	assert.Equal(t, "The photo shows a cut padlock.", answer)
	assert.Equal(t, "gpt-4o", chat.lastReq.Model)

	assert.Len(t, chat.lastReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, chat.lastReq.Messages[0].Role)

	parts := chat.lastReq.Messages[1].MultiContent
	assert.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "User Question: What do the photos show?")
	assert.Equal(t, "https://img.example/one.jpg", parts[1].ImageURL.URL)
}

func TestAskUpstreamError(t *testing.T) {
	chat := &stubChat{err: errors.New("connection reset")}
	responder := NewResponder(chat, "gpt-4o", "gpt-4o-mini")

	answer, err := responder.Ask(context.Background(), &models.Case{}, "Any suspects?")

	assert.Empty(t, answer)
	assert.ErrorContains(t, err, "failed to process question")
	assert.ErrorContains(t, err, "connection reset")
}
