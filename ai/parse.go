package ai

import (
	"fmt"
	"regexp"
	"strings"
)

const defaultSummary = "Detailed forensic image analysis completed."

// maximum number of paragraphs kept by the fallback split
const maxFallbackInsights = 10

var (
	summaryRe        = regexp.MustCompile(`(?s)Image \d+.*?:\s*(.*?)(?:\nImage|\n\*\*|\n\n|$)`)
	firstParagraphRe = regexp.MustCompile(`(?s)^(.*?)(?:\n\*\*|\n\n|$)`)
	imageMarkerRe    = regexp.MustCompile(`Image \d+:`)
	imageLabelRe     = regexp.MustCompile(`^Image \d+:\s*`)
)

// prompt echoes the model sometimes repeats back; paragraphs containing them
// are dropped by the fallback split
var excludedPhrases = []string{"case context", "analysis focus", "observation protocol"}

// parseAnalysis turns the model's free text into a summary and an ordered
// insight list. Best-effort by design: structured per-image split first,
// paragraph split second, fixed placeholder last.
func parseAnalysis(text string) (string, []string) {
	summary := extractSummary(text)

	insights := splitImageSegments(text)
	if len(insights) == 0 {
		insights = splitParagraphs(text)
	}

	return summary, insights
}

// extractSummary returns the text of the first "Image N...: ..." line up to
// the next image marker or blank line, else the first paragraph, else the
// placeholder.
func extractSummary(text string) string {
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := firstParagraphRe.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			return s
		}
	}
	return defaultSummary
}

// splitImageSegments slices the response at each "Image N:" marker and
// relabels segments sequentially. The label index is the 1-based position in
// the split, independent of the model's own numbering.
func splitImageSegments(text string) []string {
	markers := imageMarkerRe.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return nil
	}

	insights := make([]string, 0, len(markers))
	for i, marker := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		segment := imageLabelRe.ReplaceAllString(text[marker[0]:end], "")
		insights = append(insights, fmt.Sprintf("**Image %d Observations:** %s", i+1, strings.TrimSpace(segment)))
	}
	return insights
}

// splitParagraphs is the fallback when the model produced no per-image
// markers: keep substantial paragraphs that are not prompt echoes, at most
// maxFallbackInsights of them.
func splitParagraphs(text string) []string {
	var insights []string
	for _, p := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(p)
		if len(trimmed) <= 20 {
			continue
		}
		if containsExcludedPhrase(trimmed) {
			continue
		}
		insights = append(insights, trimmed)
		if len(insights) == maxFallbackInsights {
			break
		}
	}
	return insights
}

func containsExcludedPhrase(p string) bool {
	lower := strings.ToLower(p)
	for _, phrase := range excludedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
