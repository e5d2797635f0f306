package documents

import (
	"strings"
	"time"
)

// Normalization of extraction output into storable fields. Unrecognized
// values map to explicit sentinels, never to NULL (see NumeroSinReconocer).

// NormalizeTipo maps a recognized type string to a known Tipo, defaulting to otro.
func NormalizeTipo(v *string) Tipo {
	if v == nil {
		return TipoOtro
	}
	t := Tipo(strings.ToLower(strings.TrimSpace(*v)))
	if !ValidTipo(t) {
		return TipoOtro
	}
	return t
}

// NormalizeNumero returns the recognized document number or the sentinel.
func NormalizeNumero(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return NumeroSinReconocer
	}
	return strings.TrimSpace(*v)
}

// NormalizeFecha returns the recognized issue date or the upload date.
func NormalizeFecha(v *time.Time, ahora time.Time) time.Time {
	if v == nil || v.IsZero() {
		return ahora
	}
	return *v
}

// NormalizeMoneda returns the recognized currency code or the home currency.
func NormalizeMoneda(v *string, monedaBase string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return monedaBase
	}
	return strings.ToUpper(strings.TrimSpace(*v))
}

// NormalizeMonto returns the recognized amount or 0.
func NormalizeMonto(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// OptString flattens a nullable issuer field to its stored representation.
func OptString(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
