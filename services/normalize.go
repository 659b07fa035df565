package services

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"coachroadmap/backend/models"
)

// NormalizedRoadmap is the canonical form every inbound payload shape is
// projected into before the pipeline runs.
type NormalizedRoadmap struct {
	Client  models.ClientIdentity
	Coach   models.CoachIdentity
	Content models.RoadmapContent
	Meta    models.RoadmapMeta
}

// Normalize detects which of the two historical payload shapes the body uses
// and projects it into the canonical form. Detection is structural: a body
// with both "data" and "plan" keys is the current shape; a body with both
// "validation" and the empty-string key is the legacy shape. Anything else is
// rejected as invalid format.
func Normalize(body []byte) (*NormalizedRoadmap, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalidf("body is not valid JSON")
	}
	// single-element arrays are unwrapped to their first element
	if arr, ok := raw.([]any); ok {
		if len(arr) == 0 {
			return nil, invalidf("empty array body")
		}
		raw = arr[0]
	}
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, invalidf("body is not a JSON object")
	}
	// some senders wrap everything under roadmap_data
	if inner, ok := root["roadmap_data"].(map[string]any); ok {
		root = inner
	}

	data, hasData := root["data"].(map[string]any)
	_, hasPlan := root["plan"]
	validation, hasValidation := root["validation"].(map[string]any)
	_, hasLegacyContent := root[""]

	switch {
	case hasData && hasPlan:
		return normalizeCurrent(root, data)
	case hasValidation && hasLegacyContent:
		return normalizeLegacy(root, validation)
	default:
		return nil, invalidf("payload matches neither known roadmap shape")
	}
}

func normalizeCurrent(root, data map[string]any) (*NormalizedRoadmap, error) {
	content, err := decodeContent(root["plan"])
	if err != nil {
		return nil, err
	}
	n := &NormalizedRoadmap{
		Client: models.ClientIdentity{
			ClientID: str(data, "client_id"),
			Name:     str(data, "client_name"),
			Email:    str(data, "client_email"),
			Phone:    str(data, "client_phone"),
		},
		Coach: models.CoachIdentity{
			CoachID: str(data, "coach_id"),
			Name:    str(data, "coach_name"),
		},
		Content: *content,
		Meta: models.RoadmapMeta{
			StartDate: str(data, "start_date"),
		},
	}
	if v, ok := data["cycle_number"].(float64); ok {
		cn := int(v)
		n.Meta.CycleNumber = &cn
	}
	n.Coach.Email = findCoachEmail(root, data, contentHeader(root["plan"]))
	if err := resolveClientEmail(&n.Client, &n.Content); err != nil {
		return nil, err
	}
	return n, nil
}

func normalizeLegacy(root, validation map[string]any) (*NormalizedRoadmap, error) {
	content, err := decodeContent(root[""])
	if err != nil {
		return nil, err
	}
	// legacy bodies carry no identity block; everything comes from the header
	n := &NormalizedRoadmap{
		Client: models.ClientIdentity{
			ClientID: str(validation, "client_id"),
			Name:     content.Header.CompanyName,
			Email:    content.Header.Email,
		},
		Content: *content,
	}
	n.Coach.Email = findCoachEmail(root, nil, contentHeader(root[""]))
	if err := resolveClientEmail(&n.Client, &n.Content); err != nil {
		return nil, err
	}
	return n, nil
}

// rawContent decodes with slices so cardinality can be checked explicitly
// instead of letting fixed-size arrays silently truncate or pad.
type rawContent struct {
	Header         models.RoadmapHeader  `json:"header"`
	Vision         models.RoadmapVision  `json:"vision"`
	StrategicGoals models.StrategicGoals `json:"strategic_goals"`
	MonthlyPlan    []struct {
		Weeks []string `json:"weeks"`
	} `json:"monthly_plan"`
}

func decodeContent(v any) (*models.RoadmapContent, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, invalidf("roadmap content is not serializable")
	}
	var rc rawContent
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, invalidf("roadmap content does not match the expected structure")
	}
	if len(rc.MonthlyPlan) != models.MonthsPerPlan {
		return nil, invalidf("monthly_plan must contain exactly %d months, got %d", models.MonthsPerPlan, len(rc.MonthlyPlan))
	}
	out := &models.RoadmapContent{
		Header:         rc.Header,
		Vision:         rc.Vision,
		StrategicGoals: rc.StrategicGoals,
	}
	for i, m := range rc.MonthlyPlan {
		if len(m.Weeks) != models.WeeksPerMonth {
			return nil, invalidf("month %d must contain exactly %d weeks, got %d", i+1, models.WeeksPerMonth, len(m.Weeks))
		}
		copy(out.MonthlyPlan[i].Weeks[:], m.Weeks)
	}
	return out, nil
}

// resolveClientEmail applies the fallback chain: explicit email, then the
// content header email, then a placeholder synthesized from the name.
func resolveClientEmail(client *models.ClientIdentity, content *models.RoadmapContent) error {
	switch {
	case client.Email != "":
		log.Printf("normalize: client email from payload: %s", client.Email)
	case content.Header.Email != "":
		client.Email = content.Header.Email
		log.Printf("normalize: client email from content header: %s", client.Email)
	case client.Name != "":
		client.Email = slug(client.Name) + "@client.temp"
		log.Printf("normalize: synthesized placeholder email for %q: %s", client.Name, client.Email)
	default:
		return invalidf("client_email or client_name is required")
	}
	if client.Name == "" {
		client.Name = content.Header.CompanyName
	}
	return nil
}

// findCoachEmail searches the five historical locations in priority order and
// takes the first non-empty hit.
func findCoachEmail(root, data, header map[string]any) string {
	candidates := []struct {
		scope string
		m     map[string]any
		key   string
	}{
		{"top-level", root, "coach_email"},
		{"top-level", root, "coachEmail"},
		{"data", data, "coach_email"},
		{"data", data, "coachEmail"},
		{"header", header, "coach_email"},
	}
	for _, c := range candidates {
		if c.m == nil {
			continue
		}
		if v := str(c.m, c.key); v != "" {
			log.Printf("normalize: coach email from %s %s: %s", c.scope, c.key, v)
			return v
		}
	}
	return ""
}

func contentHeader(content any) map[string]any {
	m, ok := content.(map[string]any)
	if !ok {
		return nil
	}
	h, _ := m["header"].(map[string]any)
	return h
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return strings.TrimSpace(v)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), ".")
	return strings.Trim(s, ".")
}
