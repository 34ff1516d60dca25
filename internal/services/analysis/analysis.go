// Package analysis проксирует запросы анализа содержимого к генеративному
// API: части запроса передаются без изменений, ответ модели очищается от
// ограждений кода и проверяется как JSON.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cliplens/cliplens-backend/internal/aiclient"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
)

// ErrNotJSON возвращается, когда текст модели не разбирается как JSON.
var ErrNotJSON = errors.New("model response is not valid json")

// Generator описывает клиент генеративного API.
type Generator interface {
	GenerateContent(ctx context.Context, systemInstruction string, parts []aiclient.Part) (string, error)
}

// Service — прокси запросов анализа.
type Service struct {
	generator Generator
	log       *slog.Logger
}

// New создает новый экземпляр сервиса анализа.
func New(generator Generator, log *slog.Logger) *Service {
	return &Service{generator: generator, log: log}
}

// Analyze пересылает запрос модели и возвращает её JSON-ответ.
// Ошибки апстрима возвращаются как *aiclient.APIError, не-JSON ответ
// модели — как ErrNotJSON.
func (s *Service) Analyze(ctx context.Context, systemInstruction string, parts []aiclient.Part) (json.RawMessage, error) {
	const op = "analysis.Analyze"

	text, err := s.generator.GenerateContent(ctx, systemInstruction, parts)
	if err != nil {
		var apiErr *aiclient.APIError
		if errors.As(err, &apiErr) {
			s.log.Error("upstream error",
				slog.Int("status", apiErr.StatusCode),
				slog.String("message", apiErr.Message))
			return nil, apiErr
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cleaned := stripCodeFences(text)
	if !json.Valid([]byte(cleaned)) {
		s.log.Error("model returned non-json text", sl.Err(ErrNotJSON))
		return nil, ErrNotJSON
	}
	return json.RawMessage(cleaned), nil
}

// stripCodeFences убирает обрамление ```json ... ```, которое модели
// добавляют вопреки запрошенному JSON MIME-типу ответа.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
