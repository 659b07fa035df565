package services

import (
	"strconv"
	"strings"
)

// ParseCurrency converts locale-formatted amounts like "1 234,56 €" into a
// float. Returns nil for empty or unparseable input, never an error.
func ParseCurrency(s string) *float64 {
	return parseNumber(s, "€$£")
}

// ParsePercentage converts "12%" / "12,5 %" into a float (12, 12.5).
func ParsePercentage(s string) *float64 {
	return parseNumber(s, "%")
}

func parseNumber(s, symbols string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == ' ' || r == ' ' || r == '\t':
			return -1
		case strings.ContainsRune(symbols, r):
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil
	}
	// French-style decimal comma: a single comma with no dot is the decimal
	// separator; otherwise commas are thousands separators.
	if strings.Count(cleaned, ",") == 1 && !strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ShortTitle truncates text to maxLen, back-trims to the last whole word and
// appends an ellipsis when something was cut.
func ShortTitle(text string, maxLen int) string {
	t := strings.TrimSpace(text)
	if len(t) <= maxLen {
		return t
	}
	cut := t[:maxLen]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}

// SplitActions breaks a newline-delimited action block into its non-empty
// lines with leading bullet markers stripped.
func SplitActions(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = stripBullet(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// BulletLines keeps only the lines that start with a dash marker, stripped.
// This is the task-extraction rule: free text without a marker is not a task.
func BulletLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		if cleaned := stripBullet(trimmed); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func stripBullet(line string) string {
	t := strings.TrimSpace(line)
	t = strings.TrimLeft(t, "-•*")
	return strings.TrimSpace(t)
}
