package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
	"github.com/bryanwahyu/gastos-intake/internal/infra/extraction/prompt"
)

const (
	maxTokens = 2048
	engineTag = "openai"
)

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Extract sends the document to a vision-capable chat model and parses the
// JSON it returns. Schema violations degrade to a near-zero confidence
// result rather than an error: only unreadable input is terminal.
func (c *Client) Extract(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
	if len(up.Data) == 0 {
		return nil, extraction.ErrUnreadableFile
	}

	userParts, err := buildParts(up)
	if err != nil {
		return nil, err
	}

	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	raw := stripFences(resp.Choices[0].Message.Content)
	return parseResult(raw), nil
}

// buildParts attaches the document: images go inline as data URLs, anything
// with a readable text layer goes as plain text.
func buildParts(up extraction.Upload) ([]openai.ChatMessagePart, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt(up.Filename)},
	}
	if strings.HasPrefix(up.ContentType, "image/") {
		dataURL := fmt.Sprintf("data:%s;base64,%s", up.ContentType, base64.StdEncoding.EncodeToString(up.Data))
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh},
		})
		return parts, nil
	}
	if utf8.Valid(up.Data) {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: string(up.Data),
		})
		return parts, nil
	}
	return nil, extraction.ErrUnreadableFile
}

// wireResult mirrors the JSON contract in the system prompt.
type wireResult struct {
	Tipo           *string  `json:"tipo_documento"`
	Numero         *string  `json:"numero_documento"`
	FechaEmision   *string  `json:"fecha_emision"`
	Moneda         *string  `json:"moneda"`
	EmisorRUC      *string  `json:"emisor_ruc"`
	EmisorRazon    *string  `json:"emisor_razon_social"`
	EmisorEmail    *string  `json:"emisor_email"`
	EmisorTelefono *string  `json:"emisor_telefono"`
	Subtotal       *float64 `json:"subtotal"`
	IGV            *float64 `json:"igv"`
	Total          *float64 `json:"total"`
	TextoRaw       string   `json:"texto_raw"`
	Confianza      float64  `json:"confianza_ocr"`
}

func parseResult(raw string) *extraction.Result {
	degraded := &extraction.Result{Confianza: 0, TextoRaw: raw, Engine: engineTag}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return degraded
	}
	if err := validateResult(doc); err != nil {
		return degraded
	}

	var w wireResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return degraded
	}

	res := &extraction.Result{
		Tipo:           w.Tipo,
		Numero:         w.Numero,
		Moneda:         w.Moneda,
		EmisorRUC:      w.EmisorRUC,
		EmisorRazon:    w.EmisorRazon,
		EmisorEmail:    w.EmisorEmail,
		EmisorTelefono: w.EmisorTelefono,
		Subtotal:       w.Subtotal,
		IGV:            w.IGV,
		Total:          w.Total,
		TextoRaw:       w.TextoRaw,
		Confianza:      w.Confianza,
		Engine:         engineTag,
	}
	if w.FechaEmision != nil {
		if t, err := time.Parse("2006-01-02", *w.FechaEmision); err == nil {
			res.FechaEmision = &t
		}
	}
	return res
}
