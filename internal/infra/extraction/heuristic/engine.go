package heuristic

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
)

const engineTag = "heuristico"

// Engine recognizes structured fields from documents that carry a readable
// text layer (plain text uploads, text-based PDFs already run through a
// client-side OCR pass). Binary images without text produce a near-zero
// confidence result; truly unreadable input fails with ErrUnreadableFile.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Extract(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
	if len(up.Data) == 0 {
		return nil, extraction.ErrUnreadableFile
	}

	text, ok := readableText(up)
	if !ok {
		// no text layer to work with; still a valid result per the engine
		// contract, just with nothing recognized
		return &extraction.Result{Confianza: 0, Engine: engineTag}, nil
	}

	lower := strings.ToLower(text)

	res := &extraction.Result{
		Tipo:         matchTipo(lower),
		Numero:       matchNumero(text),
		FechaEmision: matchFecha(text),
		Moneda:       matchMoneda(lower),
		EmisorRUC:    matchRUC(text),
		EmisorRazon:  matchRazonSocial(text),
		EmisorEmail:  matchEmail(text),
		TextoRaw:     text,
		Engine:       engineTag,
	}
	res.EmisorTelefono = matchTelefono(stripRUC(text))
	res.Subtotal, res.IGV, res.Total = matchMontos(lower)
	res.Confianza = confidence(res, text)
	return res, nil
}

// stripRUC removes RUC matches so an 11-digit tax id is never half-matched
// as a 9-digit phone number.
func stripRUC(text string) string {
	return rxRUC.ReplaceAllString(text, "")
}

// readableText decides whether the upload carries usable text. Anything
// declared text/* is taken as-is; otherwise the bytes must be valid UTF-8
// with a high printable ratio.
func readableText(up extraction.Upload) (string, bool) {
	s := string(up.Data)
	if strings.HasPrefix(up.ContentType, "text/") {
		return s, true
	}
	if !utf8.ValidString(s) {
		return "", false
	}
	printable := 0
	total := 0
	for _, r := range s {
		total++
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 || float64(printable)/float64(total) < 0.9 {
		return "", false
	}
	return s, true
}

// confidence scores the recognition on a 0..100 scale from field hit rates,
// weighted toward the fields reviewers care about most.
func confidence(r *extraction.Result, text string) float64 {
	score := 15.0 // base: we at least had text
	if r.Tipo != nil {
		score += 10
	}
	if r.Numero != nil {
		score += 15
	}
	if r.FechaEmision != nil {
		score += 10
	}
	if r.EmisorRUC != nil {
		score += 15
	}
	if r.Total != nil {
		score += 15
	}
	if r.Subtotal != nil && r.IGV != nil {
		score += 10
	}
	if r.Moneda != nil {
		score += 5
	}
	if len(text) > 120 {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}
