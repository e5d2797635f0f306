package heuristic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
)

const facturaSample = `FERRETERIA EL SOL S.A.C.
RUC: 20123456789
FACTURA ELECTRONICA
F001-00012345
Fecha: 15/03/2024
ventas@elsol.pe  Tel: 987654321

SUBTOTAL: S/ 100.00
IGV (18%): S/ 18.00
TOTAL: S/ 118.00
`

func TestExtractFactura(t *testing.T) {
	eng := New()
	res, err := eng.Extract(context.Background(), extraction.Upload{
		Filename:    "factura.txt",
		ContentType: "text/plain",
		Data:        []byte(facturaSample),
	})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if res.Tipo == nil || *res.Tipo != "factura" {
		t.Errorf("tipo = %v, want factura", res.Tipo)
	}
	if res.Numero == nil || *res.Numero != "F001-00012345" {
		t.Errorf("numero = %v, want F001-00012345", res.Numero)
	}
	if res.EmisorRUC == nil || *res.EmisorRUC != "20123456789" {
		t.Errorf("ruc = %v, want 20123456789", res.EmisorRUC)
	}
	if res.EmisorRazon == nil || *res.EmisorRazon != "FERRETERIA EL SOL S.A.C." {
		t.Errorf("razon = %v, want FERRETERIA EL SOL S.A.C.", res.EmisorRazon)
	}
	if res.EmisorEmail == nil || *res.EmisorEmail != "ventas@elsol.pe" {
		t.Errorf("email = %v", res.EmisorEmail)
	}
	if res.EmisorTelefono == nil || *res.EmisorTelefono != "987654321" {
		t.Errorf("telefono = %v, want 987654321", res.EmisorTelefono)
	}
	wantFecha := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if res.FechaEmision == nil || !res.FechaEmision.Equal(wantFecha) {
		t.Errorf("fecha = %v, want %v", res.FechaEmision, wantFecha)
	}
	if res.Moneda == nil || *res.Moneda != "PEN" {
		t.Errorf("moneda = %v, want PEN", res.Moneda)
	}
	if res.Subtotal == nil || *res.Subtotal != 100.00 {
		t.Errorf("subtotal = %v, want 100.00", res.Subtotal)
	}
	if res.IGV == nil || *res.IGV != 18.00 {
		t.Errorf("igv = %v, want 18.00", res.IGV)
	}
	if res.Total == nil || *res.Total != 118.00 {
		t.Errorf("total = %v, want 118.00", res.Total)
	}
	if res.Confianza < 85 {
		t.Errorf("confianza = %v, a fully recognized factura should clear the review threshold", res.Confianza)
	}
	if res.Engine != "heuristico" {
		t.Errorf("engine = %q", res.Engine)
	}
}

func TestExtractSparseTextIsLowConfidence(t *testing.T) {
	eng := New()
	res, err := eng.Extract(context.Background(), extraction.Upload{
		Filename:    "nota.txt",
		ContentType: "text/plain",
		Data:        []byte("nota interna\nsin montos"),
	})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Tipo != nil || res.Numero != nil || res.Total != nil {
		t.Errorf("nothing should be recognized, got %+v", res)
	}
	if res.Confianza >= 85 {
		t.Errorf("confianza = %v, sparse text must stay under the review threshold", res.Confianza)
	}
}

func TestExtractEmptyUpload(t *testing.T) {
	eng := New()
	_, err := eng.Extract(context.Background(), extraction.Upload{Filename: "vacio.txt"})
	if !errors.Is(err, extraction.ErrUnreadableFile) {
		t.Fatalf("error = %v, want ErrUnreadableFile", err)
	}
}

func TestExtractBinaryHasZeroConfidence(t *testing.T) {
	eng := New()
	res, err := eng.Extract(context.Background(), extraction.Upload{
		Filename:    "foto.jpg",
		ContentType: "image/jpeg",
		Data:        []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x80, 0x81},
	})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Confianza != 0 {
		t.Errorf("confianza = %v, want 0 for a file without text layer", res.Confianza)
	}
}

func TestMatchMontosLastTotalWins(t *testing.T) {
	sub, igv, total := matchMontos("total gravado: 50.00\nigv: 9.00\nimporte total: 59.00")
	if sub != nil {
		t.Errorf("subtotal = %v, want nil", sub)
	}
	if igv == nil || *igv != 9.00 {
		t.Errorf("igv = %v, want 9.00", igv)
	}
	if total == nil || *total != 59.00 {
		t.Errorf("total = %v, want 59.00 (importe total wins)", total)
	}
}

func TestTipoPriority(t *testing.T) {
	got := matchTipo("factura electronica - conserve su ticket")
	if got == nil || *got != "factura" {
		t.Errorf("tipo = %v, want factura over ticket", got)
	}
}
