package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field recognizers for Peruvian expense documents. All of them work on the
// lowercased raw text and return nil when nothing matched; the caller keeps
// absence explicit so normalization happens once, downstream.

var (
	rxRUC      = regexp.MustCompile(`\b(?:10|15|17|20)\d{9}\b`)
	rxNumero   = regexp.MustCompile(`\b[A-Z]{1,2}\d{3}-\d{1,8}\b`)
	rxEmail    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	rxTelefono = regexp.MustCompile(`\b9\d{8}\b|\(\d{1,3}\)\s?\d{6,7}`)
	rxFecha    = regexp.MustCompile(`\b(\d{2}[/-]\d{2}[/-]\d{4}|\d{4}-\d{2}-\d{2})\b`)
	rxMonto    = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2}`)
	rxRazon    = regexp.MustCompile(`(?i)^(.{3,80}?(?:S\.?A\.?C\.?|S\.?R\.?L\.?|E\.?I\.?R\.?L\.?|S\.?A\.?))\s*$`)
)

// tipoKeywords in priority order; "factura" must win over a stray "ticket".
var tipoKeywords = []struct {
	needle string
	tipo   string
}{
	{"factura", "factura"},
	{"boleta", "boleta"},
	{"recibo", "recibo"},
	{"orden de compra", "orden_compra"},
	{"contrato", "contrato"},
	{"ticket", "ticket"},
}

func matchTipo(lower string) *string {
	for _, k := range tipoKeywords {
		if strings.Contains(lower, k.needle) {
			t := k.tipo
			return &t
		}
	}
	return nil
}

func matchNumero(text string) *string {
	if m := rxNumero.FindString(text); m != "" {
		return &m
	}
	return nil
}

func matchRUC(text string) *string {
	if m := rxRUC.FindString(text); m != "" {
		return &m
	}
	return nil
}

func matchEmail(text string) *string {
	if m := rxEmail.FindString(text); m != "" {
		return &m
	}
	return nil
}

func matchTelefono(text string) *string {
	if m := rxTelefono.FindString(text); m != "" {
		return &m
	}
	return nil
}

func matchFecha(text string) *time.Time {
	m := rxFecha.FindString(text)
	if m == "" {
		return nil
	}
	for _, layout := range []string{"02/01/2006", "02-01-2006", "2006-01-02"} {
		if t, err := time.Parse(layout, m); err == nil {
			return &t
		}
	}
	return nil
}

func matchMoneda(lower string) *string {
	switch {
	case strings.Contains(lower, "s/") || strings.Contains(lower, "soles"):
		m := "PEN"
		return &m
	case strings.Contains(lower, "us$") || strings.Contains(lower, "usd") ||
		strings.Contains(lower, "dólares") || strings.Contains(lower, "dolares"):
		m := "USD"
		return &m
	}
	return nil
}

// matchRazonSocial picks the first line that looks like a registered
// company name (S.A.C., S.R.L., etc.).
func matchRazonSocial(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := rxRazon.FindStringSubmatch(line); m != nil {
			razon := strings.TrimSpace(m[1])
			return &razon
		}
	}
	return nil
}

// montoEnLinea returns the last amount on a line, as labeled totals usually
// put the figure at the end.
func montoEnLinea(line string) *float64 {
	ms := rxMonto.FindAllString(line, -1)
	if len(ms) == 0 {
		return nil
	}
	raw := strings.ReplaceAll(ms[len(ms)-1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// matchMontos scans labeled lines for subtotal, IGV and total.
func matchMontos(lower string) (subtotal, igv, total *float64) {
	for _, line := range strings.Split(lower, "\n") {
		switch {
		case strings.Contains(line, "subtotal") || strings.Contains(line, "sub total") ||
			strings.Contains(line, "op. gravada") || strings.Contains(line, "op gravada"):
			if v := montoEnLinea(line); v != nil && subtotal == nil {
				subtotal = v
			}
		case strings.Contains(line, "igv") || strings.Contains(line, "i.g.v"):
			if v := montoEnLinea(line); v != nil && igv == nil {
				igv = v
			}
		case strings.Contains(line, "total"):
			if v := montoEnLinea(line); v != nil {
				total = v // keep the last "total" line, importe total wins
			}
		}
	}
	return subtotal, igv, total
}
