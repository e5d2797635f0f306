package documents

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
)

const exportLimit = 1000

// ExportXLSX produces an Excel workbook with one row per document of the
// given concepto, for the admin export button.
func (s *Service) ExportXLSX(ctx context.Context, conceptoID string, estado domain.Estado) ([]byte, error) {
	docs, err := s.List(ctx, conceptoID, estado, exportLimit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Documentos"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Fecha Emisión",
		"Tipo",
		"Número",
		"Emisor RUC",
		"Razón Social",
		"Moneda",
		"Subtotal",
		"IGV",
		"Total",
		"Confianza OCR",
		"Estado",
		"Requiere Validación",
		"Archivo",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, d := range docs {
		values := []any{
			d.FechaEmision.Format("2006-01-02"),
			string(d.Tipo),
			d.Numero,
			d.EmisorRUC,
			d.EmisorRazon,
			d.Moneda,
			d.Subtotal,
			d.IGV,
			d.Total,
			d.Confianza,
			string(d.Estado),
			d.RequiereValid,
			d.ArchivoNombre,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
