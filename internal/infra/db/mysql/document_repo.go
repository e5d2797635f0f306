package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, concepto_gasto_id, usuario_id,
       archivo_path, archivo_nombre, archivo_tipo, archivo_tamano,
       tipo_documento, numero_documento, fecha_emision, moneda,
       emisor_ruc, emisor_razon_social, emisor_email, emisor_telefono,
       subtotal, igv, total, texto_raw, confianza_ocr, procesado_por,
       requiere_validacion, estado, notas, created_at, updated_at`

// Save insert/update Document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO gastos_documentos
(id, concepto_gasto_id, usuario_id,
 archivo_path, archivo_nombre, archivo_tipo, archivo_tamano,
 tipo_documento, numero_documento, fecha_emision, moneda,
 emisor_ruc, emisor_razon_social, emisor_email, emisor_telefono,
 subtotal, igv, total, texto_raw, confianza_ocr, procesado_por,
 requiere_validacion, estado, notas, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 tipo_documento=VALUES(tipo_documento), numero_documento=VALUES(numero_documento),
 fecha_emision=VALUES(fecha_emision), moneda=VALUES(moneda),
 emisor_ruc=VALUES(emisor_ruc), emisor_razon_social=VALUES(emisor_razon_social),
 emisor_email=VALUES(emisor_email), emisor_telefono=VALUES(emisor_telefono),
 subtotal=VALUES(subtotal), igv=VALUES(igv), total=VALUES(total),
 estado=VALUES(estado), notas=VALUES(notas), updated_at=VALUES(updated_at);
`
	_, err := r.db.ExecContext(ctx, q,
		d.ID, d.ConceptoID, d.UsuarioID,
		d.ArchivoPath, d.ArchivoNombre, d.ArchivoTipo, d.ArchivoTamano,
		d.Tipo, d.Numero, d.FechaEmision, d.Moneda,
		nullIfEmpty(d.EmisorRUC), nullIfEmpty(d.EmisorRazon),
		nullIfEmpty(d.EmisorEmail), nullIfEmpty(d.EmisorTelefono),
		d.Subtotal, d.IGV, d.Total,
		nullIfEmpty(d.TextoRaw), d.Confianza, d.ProcesadoPor,
		d.RequiereValid, d.Estado, nullIfEmpty(d.Notas),
		d.CreatedAt, d.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(rs rowScanner) (*domain.Document, error) {
	var d domain.Document
	var ruc, razon, email, tel, texto, notas sql.NullString
	if err := rs.Scan(
		&d.ID, &d.ConceptoID, &d.UsuarioID,
		&d.ArchivoPath, &d.ArchivoNombre, &d.ArchivoTipo, &d.ArchivoTamano,
		&d.Tipo, &d.Numero, &d.FechaEmision, &d.Moneda,
		&ruc, &razon, &email, &tel,
		&d.Subtotal, &d.IGV, &d.Total, &texto, &d.Confianza, &d.ProcesadoPor,
		&d.RequiereValid, &d.Estado, &notas, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.EmisorRUC = fromNull(ruc)
	d.EmisorRazon = fromNull(razon)
	d.EmisorEmail = fromNull(email)
	d.EmisorTelefono = fromNull(tel)
	d.TextoRaw = fromNull(texto)
	d.Notas = fromNull(notas)
	return &d, nil
}

// Get by ID
func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM gastos_documentos WHERE id=? LIMIT 1;`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

// ListByConcepto newest first; estado "" means all
func (r *DocumentRepository) ListByConcepto(ctx context.Context, conceptoID string, estado domain.Estado, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + documentColumns + ` FROM gastos_documentos WHERE concepto_gasto_id=?`
	args := []any{conceptoID}
	if estado != "" {
		q += " AND estado=?"
		args = append(args, estado)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateFields patches only the editable columns present in cmd.
// requiere_validacion, archivo_path and created_at are deliberately
// unreachable from here.
func (r *DocumentRepository) UpdateFields(ctx context.Context, id domain.DocumentID, cmd domain.UpdateCommand) error {
	sets := []string{"updated_at=NOW()"}
	var args []any

	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if cmd.Tipo != nil {
		add("tipo_documento", *cmd.Tipo)
	}
	if cmd.Numero != nil {
		add("numero_documento", *cmd.Numero)
	}
	if cmd.FechaEmision != nil {
		add("fecha_emision", *cmd.FechaEmision)
	}
	if cmd.Moneda != nil {
		add("moneda", *cmd.Moneda)
	}
	if cmd.EmisorRUC != nil {
		add("emisor_ruc", nullIfEmpty(*cmd.EmisorRUC))
	}
	if cmd.EmisorRazon != nil {
		add("emisor_razon_social", nullIfEmpty(*cmd.EmisorRazon))
	}
	if cmd.EmisorEmail != nil {
		add("emisor_email", nullIfEmpty(*cmd.EmisorEmail))
	}
	if cmd.EmisorTelefono != nil {
		add("emisor_telefono", nullIfEmpty(*cmd.EmisorTelefono))
	}
	if cmd.Subtotal != nil {
		add("subtotal", *cmd.Subtotal)
	}
	if cmd.IGV != nil {
		add("igv", *cmd.IGV)
	}
	if cmd.Total != nil {
		add("total", *cmd.Total)
	}
	if cmd.Estado != nil {
		add("estado", *cmd.Estado)
	}
	if cmd.Notas != nil {
		add("notas", nullIfEmpty(*cmd.Notas))
	}

	q := fmt.Sprintf("UPDATE gastos_documentos SET %s WHERE id=?", strings.Join(sets, ", "))
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResumenPorEstado counts a concepto's documents grouped by estado
func (r *DocumentRepository) ResumenPorEstado(ctx context.Context, conceptoID string) (domain.Resumen, error) {
	const q = `
SELECT estado, COUNT(*)
FROM gastos_documentos
WHERE concepto_gasto_id=?
GROUP BY estado;`
	rows, err := r.db.QueryContext(ctx, q, conceptoID)
	if err != nil {
		return domain.Resumen{}, err
	}
	defer rows.Close()

	var res domain.Resumen
	for rows.Next() {
		var estado domain.Estado
		var n int
		if err := rows.Scan(&estado, &n); err != nil {
			return domain.Resumen{}, err
		}
		switch estado {
		case domain.EstadoPendiente:
			res.Pendientes = n
		case domain.EstadoAprobado:
			res.Aprobados = n
		case domain.EstadoRechazado:
			res.Rechazados = n
		case domain.EstadoRevision:
			res.EnRevision = n
		}
		res.Total += n
	}
	return res, rows.Err()
}
