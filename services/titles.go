package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"coachroadmap/backend/config"
	"coachroadmap/backend/models"
	"coachroadmap/backend/utils"
)

// WeekTitles returns one short title per week of the plan. One batched Gemini
// call covers all 16 weeks; any failure on that path (unconfigured key,
// network error, malformed response) degrades to the deterministic local
// fallback and is never surfaced to the caller.
func WeekTitles(ctx context.Context, cfg config.Config, weeks [models.TotalWeeks]string) [models.TotalWeeks]string {
	if cfg.GeminiAPIKey != "" {
		if titles, err := aiWeekTitles(ctx, cfg, weeks); err == nil {
			return titles
		} else {
			log.Printf("titles: ai generation failed, using fallback: %v", err)
		}
	}
	var out [models.TotalWeeks]string
	for i, w := range weeks {
		out[i] = FallbackTitle(w)
	}
	return out
}

func aiWeekTitles(ctx context.Context, cfg config.Config, weeks [models.TotalWeeks]string) (out [models.TotalWeeks]string, err error) {
	// a panicking SDK must also count as a fallback trigger
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("title generation panic: %v", r)
		}
	}()

	var b strings.Builder
	b.WriteString("You label the weeks of a 16-week business coaching plan.\n")
	b.WriteString("For each week below, produce one short title of 3 to 5 words summarizing its actions.\n")
	b.WriteString("Return STRICT JSON only, no commentary, no markdown fences.\n")
	b.WriteString(`Use exactly this format: {"titles": ["...", ...]} with exactly 16 strings, in week order.` + "\n\n")
	for i, w := range weeks {
		fmt.Fprintf(&b, "Week %d:\n%s\n\n", i+1, w)
	}

	client, err := utils.NewAIClient(ctx, utils.AIConfig{APIKey: cfg.GeminiAPIKey, GenModel: cfg.GeminiModel})
	if err != nil {
		return out, err
	}
	defer client.Close()
	text, err := utils.GenerateText(ctx, client, cfg.GeminiModel, genai.Text(b.String()))
	if err != nil {
		return out, err
	}
	var parsed struct {
		Titles []string `json:"titles"`
	}
	if err := json.Unmarshal([]byte(utils.StripFences(text)), &parsed); err != nil {
		return out, fmt.Errorf("titles JSON parse error: %w", err)
	}
	if len(parsed.Titles) != models.TotalWeeks {
		return out, fmt.Errorf("expected %d titles, got %d", models.TotalWeeks, len(parsed.Titles))
	}
	for i, t := range parsed.Titles {
		t = strings.TrimSpace(t)
		if t == "" {
			return out, fmt.Errorf("empty title for week %d", i+1)
		}
		out[i] = t
	}
	return out, nil
}

// FallbackTitle derives a title from the week's action lines: markers
// stripped, lines joined, first five words kept, ellipsis appended when
// truncated. Empty weeks yield an empty title.
func FallbackTitle(weekActions string) string {
	lines := SplitActions(weekActions)
	if len(lines) == 0 {
		return ""
	}
	words := strings.Fields(strings.Join(lines, " "))
	if len(words) <= 5 {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:5], " ") + "..."
}
