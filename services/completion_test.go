package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/models"
)

func TestParseStructuredAnswer(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    models.StructuredAnswer
		wantErr bool
	}{
		{
			name: "clean json",
			raw:  `{"answer": "24VDC", "details": ["relay X1"]}`,
			want: models.StructuredAnswer{Answer: "24VDC", Details: []string{"relay X1"}},
		},
		{
			name: "json wrapped in code fences",
			raw:  "```json\n{\"answer\": \"24VDC\"}\n```",
			want: models.StructuredAnswer{Answer: "24VDC"},
		},
		{
			name: "json with surrounding prose",
			raw:  `Here is the result: {"answer": "24VDC"} hope that helps`,
			want: models.StructuredAnswer{Answer: "24VDC"},
		},
		{
			name:    "plain prose",
			raw:     "The relay uses 24VDC.",
			wantErr: true,
		},
		{
			name:    "json missing answer field",
			raw:     `{"details": ["x"]}`,
			wantErr: true,
		},
		{
			name:    "empty output",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStructuredAnswer(tt.raw)
			if tt.wantErr {
				var malformed *models.MalformedCompletionError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, tt.raw, malformed.Raw, "the raw text must survive in the error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
