package openai

import (
	"testing"
	"time"
)

func TestParseResultValid(t *testing.T) {
	raw := `{
		"tipo_documento": "factura",
		"numero_documento": "F001-00012345",
		"fecha_emision": "2024-03-15",
		"moneda": "PEN",
		"emisor_ruc": "20123456789",
		"emisor_razon_social": "Ferreteria El Sol S.A.C.",
		"emisor_email": null,
		"emisor_telefono": null,
		"subtotal": 100.0,
		"igv": 18.0,
		"total": 118.0,
		"texto_raw": "FACTURA ELECTRONICA ...",
		"confianza_ocr": 93
	}`

	res := parseResult(raw)
	if res.Tipo == nil || *res.Tipo != "factura" {
		t.Errorf("tipo = %v, want factura", res.Tipo)
	}
	if res.Numero == nil || *res.Numero != "F001-00012345" {
		t.Errorf("numero = %v", res.Numero)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if res.FechaEmision == nil || !res.FechaEmision.Equal(want) {
		t.Errorf("fecha = %v, want %v", res.FechaEmision, want)
	}
	if res.Total == nil || *res.Total != 118.0 {
		t.Errorf("total = %v, want 118.0", res.Total)
	}
	if res.Confianza != 93 {
		t.Errorf("confianza = %v, want 93", res.Confianza)
	}
	if res.Engine != "openai" {
		t.Errorf("engine = %q", res.Engine)
	}
}

func TestParseResultDegrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "lo siento, no puedo leer el documento"},
		{"missing required fields", `{"tipo_documento": "factura"}`},
		{"confidence out of range", `{"texto_raw": "x", "confianza_ocr": 140}`},
		{"unknown tipo", `{"texto_raw": "x", "confianza_ocr": 50, "tipo_documento": "voucher"}`},
		{"malformed ruc", `{"texto_raw": "x", "confianza_ocr": 50, "emisor_ruc": "abc"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := parseResult(tc.raw)
			if res.Confianza != 0 {
				t.Errorf("confianza = %v, want 0 for untrusted output", res.Confianza)
			}
			if res.TextoRaw != tc.raw {
				t.Error("raw model output should be preserved for review")
			}
			if res.Tipo != nil || res.Total != nil {
				t.Error("no fields may be trusted from invalid output")
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range tests {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
