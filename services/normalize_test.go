package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalContent() map[string]any {
	months := make([]map[string]any, 4)
	for m := range months {
		months[m] = map[string]any{"weeks": []string{"- a", "- b", "- c", "- d"}}
	}
	return map[string]any{
		"header":       map[string]any{"email": "owner@shop.test", "company_name": "Shop"},
		"vision":       map[string]any{},
		"monthly_plan": months,
	}
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestNormalizeCurrentShape(t *testing.T) {
	body := marshal(t, map[string]any{
		"data": map[string]any{
			"client_name":  "Shop",
			"client_email": "owner@shop.test",
			"coach_email":  "coach@studio.test",
			"start_date":   "2026-01-05",
		},
		"plan": minimalContent(),
	})
	n, err := Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.test", n.Client.Email)
	assert.Equal(t, "Shop", n.Client.Name)
	assert.Equal(t, "coach@studio.test", n.Coach.Email)
	assert.Equal(t, "2026-01-05", n.Meta.StartDate)
}

func TestNormalizeLegacyShape(t *testing.T) {
	body := marshal(t, map[string]any{
		"validation": map[string]any{"client_id": "abc-123"},
		"":           minimalContent(),
	})
	n, err := Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", n.Client.ClientID)
	assert.Equal(t, "owner@shop.test", n.Client.Email)
	assert.Equal(t, "Shop", n.Client.Name)
}

func TestNormalizeShapeInvariance(t *testing.T) {
	current := marshal(t, map[string]any{
		"data": map[string]any{"client_email": "owner@shop.test", "client_name": "Shop"},
		"plan": minimalContent(),
	})
	legacy := marshal(t, map[string]any{
		"validation": map[string]any{},
		"":           minimalContent(),
	})
	a, err := Normalize(current)
	require.NoError(t, err)
	b, err := Normalize(legacy)
	require.NoError(t, err)
	assert.Equal(t, a.Client.Email, b.Client.Email)
	assert.Equal(t, a.Content, b.Content)
}

func TestNormalizeUnwrapsArrayAndWrapper(t *testing.T) {
	inner := map[string]any{
		"data": map[string]any{"client_email": "owner@shop.test"},
		"plan": minimalContent(),
	}
	cases := map[string]any{
		"array":   []any{inner},
		"wrapper": map[string]any{"roadmap_data": inner},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := Normalize(marshal(t, payload))
			require.NoError(t, err)
			assert.Equal(t, "owner@shop.test", n.Client.Email)
		})
	}
}

func TestNormalizeRejectsUnknownShape(t *testing.T) {
	for _, body := range []string{
		`{"plan": {}}`,
		`{"data": {}}`,
		`{"validation": {}}`,
		`[]`,
		`"just a string"`,
		`not json`,
	} {
		_, err := Normalize([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidFormat, "body: %s", body)
	}
}

func TestNormalizeSynthesizesPlaceholderEmail(t *testing.T) {
	content := minimalContent()
	content["header"] = map[string]any{"company_name": "Chez Marcel & Fils"}
	body := marshal(t, map[string]any{
		"data": map[string]any{"client_name": "Chez Marcel & Fils"},
		"plan": content,
	})
	n, err := Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, "chez.marcel.fils@client.temp", n.Client.Email)
}

func TestNormalizeRequiresEmailOrName(t *testing.T) {
	content := minimalContent()
	content["header"] = map[string]any{}
	body := marshal(t, map[string]any{
		"data": map[string]any{},
		"plan": content,
	})
	_, err := Normalize(body)
	require.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "client_email or client_name")
}

func TestNormalizeCoachEmailPriority(t *testing.T) {
	content := minimalContent()
	header := content["header"].(map[string]any)
	header["coach_email"] = "header@studio.test"
	body := map[string]any{
		"coach_email": "top@studio.test",
		"data": map[string]any{
			"client_email": "owner@shop.test",
			"coach_email":  "data@studio.test",
		},
		"plan": content,
	}
	n, err := Normalize(marshal(t, body))
	require.NoError(t, err)
	assert.Equal(t, "top@studio.test", n.Coach.Email, "top-level wins")

	delete(body, "coach_email")
	n, err = Normalize(marshal(t, body))
	require.NoError(t, err)
	assert.Equal(t, "data@studio.test", n.Coach.Email, "then the data block")

	delete(body["data"].(map[string]any), "coach_email")
	n, err = Normalize(marshal(t, body))
	require.NoError(t, err)
	assert.Equal(t, "header@studio.test", n.Coach.Email, "then the content header")
}

func TestNormalizeEnforcesPlanCardinality(t *testing.T) {
	content := minimalContent()
	content["monthly_plan"] = []map[string]any{{"weeks": []string{"a", "b", "c", "d"}}}
	_, err := Normalize(marshal(t, map[string]any{
		"data": map[string]any{"client_email": "owner@shop.test"},
		"plan": content,
	}))
	require.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "exactly 4 months")

	content = minimalContent()
	content["monthly_plan"].([]map[string]any)[2]["weeks"] = []string{"only", "three", "weeks"}
	_, err = Normalize(marshal(t, map[string]any{
		"data": map[string]any{"client_email": "owner@shop.test"},
		"plan": content,
	}))
	require.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "exactly 4 weeks")
}

func TestWeekActionsFlattening(t *testing.T) {
	n, err := Normalize(marshal(t, map[string]any{
		"data": map[string]any{"client_email": "owner@shop.test"},
		"plan": minimalContent(),
	}))
	require.NoError(t, err)
	weeks := n.Content.WeekActions()
	assert.Len(t, weeks, 16)
	assert.Equal(t, "- a", weeks[0])
	assert.Equal(t, "- d", weeks[15])
}
