// Package gemini adapta la API de Gemini (con Google Search) al puerto Analyst.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel es el modelo usado si la config no especifica otro.
const DefaultModel = "gemini-flash-lite-latest"

// Generator produce texto a partir de un prompt. Client es la implementación
// real; los tests usan un fake.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client envuelve el SDK de genai con búsqueda web activada.
type Client struct {
	genai *genai.Client
	model string
}

// NewClient crea un Client para la Gemini API.
// Devuelve error si apiKey está vacía: el caller decide si seguir sin análisis.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini.NewClient: empty api key")
	}
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini.NewClient: %w", err)
	}
	return &Client{genai: c, model: model}, nil
}

// Generate envía un único request en streaming y concatena los chunks de texto.
// Thinking desactivado y Google Search como herramienta.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
		Tools:          []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	var sb strings.Builder
	for resp, err := range c.genai.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), cfg) {
		if err != nil {
			return "", fmt.Errorf("gemini.Generate: %w", err)
		}
		sb.WriteString(resp.Text())
	}
	return sb.String(), nil
}
