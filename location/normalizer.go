// Package location turns arbitrary user-typed location text into a canonical
// "City, Region, Country" string plus coordinates. The pipeline degrades
// gracefully: no failure in the AI or geocoding legs ever reaches the caller,
// and the worst case is the center-of-USA centroid.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/evidware/case-api/models"
)

// Result is the outcome of a normalization run. Coordinates are always set;
// absence of real location data is represented by the default centroid.
type Result struct {
	NormalizedLocation string
	Coordinates        models.Coordinates
	Confidence         string
	Reasoning          string
}

// chatCompleter is the slice of the OpenAI client the normalizer needs.
// *openai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Normalizer resolves raw location text through an ordered strategy chain:
// empty input, dictionary exact match, dictionary substring match,
// unknown/too-short input, AI normalization. The first strategy that yields
// a result wins.
type Normalizer struct {
	chat     chatCompleter
	model    string
	geocoder Geocoder

	steps []strategy
}

// strategy inspects the input and either claims it by returning a candidate
// or declines by returning nil.
type strategy func(ctx context.Context, raw, folded string) *candidate

// candidate is an intermediate normalization outcome. Strategies that already
// know the final coordinates set resolved; the rest go through the
// table → geocoder → centroid resolution step.
type candidate struct {
	Result
	resolved bool
}

// NewNormalizer wires a normalizer. chat may be nil (no AI configured); the
// AI step then degrades to its synthesized fallback.
func NewNormalizer(chat chatCompleter, model string, geocoder Geocoder) *Normalizer {
	n := &Normalizer{chat: chat, model: model, geocoder: geocoder}
	n.steps = []strategy{
		n.emptyInput,
		n.dictionaryExact,
		n.dictionarySubstring,
		n.unknownOrShort,
		n.aiNormalize,
	}
	return n
}

// Normalize runs the strategy chain. It always terminates with a value and
// never returns an error.
func (n *Normalizer) Normalize(ctx context.Context, raw string) Result {
	folded := strings.ToLower(strings.TrimSpace(raw))

	for _, step := range n.steps {
		c := step(ctx, raw, folded)
		if c == nil {
			continue
		}
		if !c.resolved {
			c.Coordinates = n.resolveCoordinates(ctx, c.NormalizedLocation)
		}
		return c.Result
	}

	// The AI step never declines, so this is unreachable; kept so the chain
	// stays total if the step list is ever reordered.
	return Result{
		NormalizedLocation: "United States",
		Coordinates:        models.DefaultCoordinates(),
		Confidence:         "n/a",
	}
}

func (n *Normalizer) emptyInput(_ context.Context, _, folded string) *candidate {
	if folded != "" {
		return nil
	}
	return &candidate{
		Result: Result{
			NormalizedLocation: "United States",
			Coordinates:        models.DefaultCoordinates(),
			Confidence:         "n/a",
		},
		resolved: true,
	}
}

// dictionaryExact matches the folded input against both the dictionary keys
// (abbreviations and common names) and the canonical values.
func (n *Normalizer) dictionaryExact(_ context.Context, _, folded string) *candidate {
	for _, m := range locationMappings {
		if m.key == folded || strings.ToLower(m.canonical) == folded {
			return &candidate{Result: Result{
				NormalizedLocation: m.canonical,
				Confidence:         "high",
				Reasoning:          "matched known location",
			}}
		}
	}
	return nil
}

// dictionarySubstring treats containment in either direction as a match.
// This is intentionally approximate; the first entry in declaration order
// wins, so short keys like "la" capture more than they should.
func (n *Normalizer) dictionarySubstring(_ context.Context, _, folded string) *candidate {
	for _, m := range locationMappings {
		if strings.Contains(folded, m.key) || strings.Contains(m.key, folded) {
			return &candidate{Result: Result{
				NormalizedLocation: m.canonical,
				Confidence:         "medium",
				Reasoning:          "partial match on known location",
			}}
		}
	}
	return nil
}

func (n *Normalizer) unknownOrShort(_ context.Context, _, folded string) *candidate {
	if !strings.Contains(folded, "unknown") && len(folded) >= 2 {
		return nil
	}
	return &candidate{
		Result: Result{
			NormalizedLocation: "United States",
			Coordinates:        models.DefaultCoordinates(),
			Confidence:         "n/a",
		},
		resolved: true,
	}
}

const locationSystemPrompt = "You are a location normalization expert. Always return valid JSON only."

const locationPromptTemplate = `You are a location normalization assistant for an FBI case management system. Your task is to determine the most likely location based on the input.

Input location: "%s"

Rules:
1. If the location is clearly a US city, state, or region, return it in the format: "City, State, USA" or "State, USA"
2. If it's a common abbreviation (like "nyc", "la", "sf"), expand it to the full name
3. If it's a misspelling or partial name (like "noah", "hyderabad", "amstredam"), determine the most likely intended location:
   - For US locations: Return as "City, State, USA" or "State, USA"
   - For non-US locations: Return the full location name with country
4. If the location is ambiguous or truly unknown, default to "United States"
5. Always prioritize US locations if the input could match multiple places
6. For common misspellings, correct them (e.g., "amstredam" -> "Amsterdam, Netherlands" or if context suggests US, try to find US match)

Examples:
- "nyc" -> "New York, NY, USA"
- "noah" -> "Noah, AR, USA" (if it's a US place) or determine the most likely location
- "hyderabad" -> "Hyderabad, India" (if not US) or "Hyderabad, AL, USA" (if US context)
- "amstredam" -> "Amsterdam, Netherlands" or correct to US location if context suggests

Return ONLY a JSON object with this exact format:
{
  "normalizedLocation": "City, State, USA",
  "confidence": "high|medium|low",
  "reasoning": "brief explanation"
}

Be concise and accurate.`

// aiNormalize delegates to the language model and parses the reply
// permissively. Transport failures are swallowed: the step falls back to the
// centroid result the same way the original service did.
func (n *Normalizer) aiNormalize(ctx context.Context, raw, _ string) *candidate {
	trimmed := strings.TrimSpace(raw)

	if n.chat == nil {
		return n.aiUnavailable(trimmed)
	}

	resp, err := n.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: locationSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(locationPromptTemplate, trimmed)},
		},
		Temperature: 0.3,
	})
	if err != nil || len(resp.Choices) == 0 {
		zap.S().Warnw("AI location normalization failed", "location", trimmed, "error", err)
		return n.aiUnavailable(trimmed)
	}

	parsed := parseAIResult(resp.Choices[0].Message.Content, trimmed)
	if parsed.NormalizedLocation == "" {
		parsed.NormalizedLocation = trimmed + ", USA"
	}
	if parsed.Confidence == "" {
		parsed.Confidence = "medium"
	}
	return &candidate{Result: parsed}
}

func (n *Normalizer) aiUnavailable(trimmed string) *candidate {
	return &candidate{
		Result: Result{
			NormalizedLocation: trimmed + ", USA",
			Coordinates:        models.DefaultCoordinates(),
			Confidence:         "low",
			Reasoning:          "AI service unavailable, using fallback",
		},
		resolved: true,
	}
}

var (
	fencedJSONRe  = regexp.MustCompile("(?s)```json\\n(.*?)\\n```")
	bareObjectRe  = regexp.MustCompile(`(?s)\{.*\}`)
	locationKeyRe = regexp.MustCompile(`"normalizedLocation":\s*"([^"]+)"`)
)

// parseAIResult accepts a fenced JSON block, a bare JSON object anywhere in
// the text, a plain string scrape of the normalizedLocation field, or
// synthesizes "<input>, USA" when nothing parses.
func parseAIResult(content, input string) Result {
	content = strings.TrimSpace(content)

	payload := content
	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		payload = m[1]
	} else if m := bareObjectRe.FindString(content); m != "" {
		payload = m
	}

	var parsed struct {
		NormalizedLocation string `json:"normalizedLocation"`
		Confidence         string `json:"confidence"`
		Reasoning          string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err == nil && parsed.NormalizedLocation != "" {
		return Result{
			NormalizedLocation: parsed.NormalizedLocation,
			Confidence:         parsed.Confidence,
			Reasoning:          parsed.Reasoning,
		}
	}

	if m := locationKeyRe.FindStringSubmatch(content); m != nil {
		return Result{NormalizedLocation: m[1]}
	}

	return Result{NormalizedLocation: input + ", USA", Confidence: "low"}
}

// resolveCoordinates finds coordinates for a normalized string: static city
// table first, then the geocoder, then the centroid fallback.
func (n *Normalizer) resolveCoordinates(ctx context.Context, normalized string) models.Coordinates {
	if coords, ok := cityCoordinates[normalized]; ok {
		return coords
	}
	if n.geocoder != nil {
		if coords := n.geocoder.Geocode(ctx, normalized); coords != nil {
			return *coords
		}
	}
	return models.DefaultCoordinates()
}
