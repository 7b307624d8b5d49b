package llm

import (
	"testing"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"code fence", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"prose around", `Here you go: {"a":[1,2]} Hope it helps!`, `{"a":[1,2]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, text := range []string{"", "no json here", `} backwards {`, `{"a": }`} {
		_, err := ExtractJSONObject(text)
		assert.ErrorIs(t, err, models.ErrMalformedResponse, text)
	}
}

func TestExtractJSONArray(t *testing.T) {
	got, err := ExtractJSONArray("Features:\n[\"Chat\", \"Payments\"]\n")
	require.NoError(t, err)
	assert.Equal(t, `["Chat", "Payments"]`, got)

	_, err = ExtractJSONArray(`{"a":1}`)
	assert.ErrorIs(t, err, models.ErrMalformedResponse)
}
