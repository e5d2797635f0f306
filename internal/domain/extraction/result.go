package extraction

import "time"

// Upload is the raw file handed to an Engine. Data is fully buffered; the
// intake flow re-reads it for storage after extraction.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Result is the best-effort structured field set produced by an Engine.
// Nil pointers mean "not recognized"; the coordinator maps those to
// sentinels at persistence time, never here.
type Result struct {
	Tipo           *string    `json:"tipo_documento"`
	Numero         *string    `json:"numero_documento"`
	FechaEmision   *time.Time `json:"fecha_emision"`
	Moneda         *string    `json:"moneda"`
	EmisorRUC      *string    `json:"emisor_ruc"`
	EmisorRazon    *string    `json:"emisor_razon_social"`
	EmisorEmail    *string    `json:"emisor_email"`
	EmisorTelefono *string    `json:"emisor_telefono"`
	Subtotal       *float64   `json:"subtotal"`
	IGV            *float64   `json:"igv"`
	Total          *float64   `json:"total"`
	TextoRaw       string     `json:"texto_raw"`
	Confianza      float64    `json:"confianza_ocr"` // 0..100
	Engine         string     `json:"procesado_por"`
}
