package openai

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resultSchema validates the model output before it is trusted as an
// extraction result. Anything that fails here degrades to a near-zero
// confidence result instead of a fabricated record.
const resultSchema = `{
  "type": "object",
  "required": ["texto_raw", "confianza_ocr"],
  "properties": {
    "tipo_documento": {
      "type": ["string", "null"],
      "enum": ["factura", "boleta", "recibo", "ticket", "orden_compra", "contrato", "otro", null]
    },
    "numero_documento": {"type": ["string", "null"]},
    "fecha_emision": {
      "type": ["string", "null"],
      "pattern": "^\\d{4}-\\d{2}-\\d{2}$"
    },
    "moneda": {"type": ["string", "null"], "pattern": "^[A-Z]{3}$"},
    "emisor_ruc": {"type": ["string", "null"], "pattern": "^\\d{11}$"},
    "emisor_razon_social": {"type": ["string", "null"]},
    "emisor_email": {"type": ["string", "null"]},
    "emisor_telefono": {"type": ["string", "null"]},
    "subtotal": {"type": ["number", "null"]},
    "igv": {"type": ["number", "null"]},
    "total": {"type": ["number", "null"]},
    "texto_raw": {"type": "string"},
    "confianza_ocr": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var compiledSchema = jsonschema.MustCompileString("extraction-result.json", resultSchema)

// validateResult checks a decoded JSON document against the result schema.
func validateResult(doc any) error {
	return compiledSchema.Validate(doc)
}

// stripFences removes accidental markdown code fences around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
