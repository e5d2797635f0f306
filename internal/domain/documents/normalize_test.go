package documents

import (
	"testing"
	"time"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestNormalizeNumero(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want string
	}{
		{"nil maps to sentinel", nil, NumeroSinReconocer},
		{"empty maps to sentinel", strPtr(""), NumeroSinReconocer},
		{"whitespace maps to sentinel", strPtr("   "), NumeroSinReconocer},
		{"recognized number kept", strPtr("F001-00012345"), "F001-00012345"},
		{"trimmed", strPtr("  B001-123 "), "B001-123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeNumero(tc.in); got != tc.want {
				t.Fatalf("NormalizeNumero = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeTipo(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want Tipo
	}{
		{"nil defaults to otro", nil, TipoOtro},
		{"unknown defaults to otro", strPtr("voucher"), TipoOtro},
		{"factura", strPtr("factura"), TipoFactura},
		{"case insensitive", strPtr("  BOLETA "), TipoBoleta},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTipo(tc.in); got != tc.want {
				t.Fatalf("NormalizeTipo = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeFecha(t *testing.T) {
	ahora := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	emision := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	if got := NormalizeFecha(nil, ahora); !got.Equal(ahora) {
		t.Fatalf("nil fecha should default to upload date, got %v", got)
	}
	var zero time.Time
	if got := NormalizeFecha(&zero, ahora); !got.Equal(ahora) {
		t.Fatalf("zero fecha should default to upload date, got %v", got)
	}
	if got := NormalizeFecha(&emision, ahora); !got.Equal(emision) {
		t.Fatalf("recognized fecha should be kept, got %v", got)
	}
}

func TestNormalizeMoneda(t *testing.T) {
	if got := NormalizeMoneda(nil, "PEN"); got != "PEN" {
		t.Fatalf("nil moneda should default to home currency, got %q", got)
	}
	if got := NormalizeMoneda(strPtr("usd"), "PEN"); got != "USD" {
		t.Fatalf("moneda should be uppercased, got %q", got)
	}
}

func TestNormalizeMonto(t *testing.T) {
	if got := NormalizeMonto(nil); got != 0 {
		t.Fatalf("nil monto should default to 0, got %v", got)
	}
	if got := NormalizeMonto(f64Ptr(118.0)); got != 118.0 {
		t.Fatalf("recognized monto should be kept, got %v", got)
	}
}

func TestMontosCuadran(t *testing.T) {
	d := &Document{Subtotal: 100, IGV: 18, Total: 118}
	if !d.MontosCuadran() {
		t.Fatal("100 + 18 = 118 should cuadrar")
	}
	d.Total = 120
	if d.MontosCuadran() {
		t.Fatal("100 + 18 != 120 should not cuadrar")
	}
	// one-cent rounding is tolerated
	d = &Document{Subtotal: 84.75, IGV: 15.26, Total: 100.00}
	if !d.MontosCuadran() {
		t.Fatal("one-cent difference should be tolerated")
	}
}
