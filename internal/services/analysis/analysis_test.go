package analysis_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/cliplens-backend/internal/aiclient"
	"github.com/cliplens/cliplens-backend/internal/services/analysis"
)

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) GenerateContent(ctx context.Context, systemInstruction string, parts []aiclient.Part) (string, error) {
	args := m.Called(ctx, systemInstruction, parts)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAnalyze(t *testing.T) {
	parts := []aiclient.Part{{Text: "describe this clip"}}

	tests := []struct {
		name      string
		modelText string
		modelErr  error
		wantJSON  string
		wantErr   error
	}{
		{
			name:      "plain json passes through",
			modelText: `{"verdict":"ok","score":7}`,
			wantJSON:  `{"verdict":"ok","score":7}`,
		},
		{
			name:      "json code fence stripped",
			modelText: "```json\n{\"verdict\":\"ok\"}\n```",
			wantJSON:  `{"verdict":"ok"}`,
		},
		{
			name:      "bare code fence stripped",
			modelText: "```\n[1,2,3]\n```",
			wantJSON:  `[1,2,3]`,
		},
		{
			name:      "non-json text rejected",
			modelText: "I cannot analyse this video.",
			wantErr:   analysis.ErrNotJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(GeneratorMock)
			gen.On("GenerateContent", mock.Anything, "sys", parts).
				Return(tt.modelText, tt.modelErr).Once()
			svc := analysis.New(gen, newNoopLogger())

			got, err := svc.Analyze(context.Background(), "sys", parts)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, json.RawMessage(tt.wantJSON), got)
		})
	}
}

func TestAnalyze_UpstreamForbiddenPreserved(t *testing.T) {
	gen := new(GeneratorMock)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return("", &aiclient.APIError{StatusCode: http.StatusForbidden, Message: "API key lacks access"}).Once()
	svc := analysis.New(gen, newNoopLogger())

	_, err := svc.Analyze(context.Background(), "", []aiclient.Part{{Text: "x"}})

	var apiErr *aiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "API key lacks access", apiErr.Message)
}
