package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"

	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type DocumentRepository struct{ db *sql.DB }

func NewDocumentRepository(db *sql.DB) *DocumentRepository { return &DocumentRepository{db: db} }

var documentColumns = []string{
	"id", "concepto_gasto_id", "usuario_id",
	"archivo_path", "archivo_nombre", "archivo_tipo", "archivo_tamano",
	"tipo_documento", "numero_documento", "fecha_emision", "moneda",
	"emisor_ruc", "emisor_razon_social", "emisor_email", "emisor_telefono",
	"subtotal", "igv", "total", "texto_raw", "confianza_ocr", "procesado_por",
	"requiere_validacion", "estado", "notas", "created_at", "updated_at",
}

// Save insert/update Document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	q, args, err := psql.Insert("gastos_documentos").
		Columns(documentColumns...).
		Values(
			d.ID, d.ConceptoID, d.UsuarioID,
			d.ArchivoPath, d.ArchivoNombre, d.ArchivoTipo, d.ArchivoTamano,
			d.Tipo, d.Numero, d.FechaEmision, d.Moneda,
			nullIfEmpty(d.EmisorRUC), nullIfEmpty(d.EmisorRazon),
			nullIfEmpty(d.EmisorEmail), nullIfEmpty(d.EmisorTelefono),
			d.Subtotal, d.IGV, d.Total,
			nullIfEmpty(d.TextoRaw), d.Confianza, d.ProcesadoPor,
			d.RequiereValid, d.Estado, nullIfEmpty(d.Notas),
			d.CreatedAt, d.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
 tipo_documento = EXCLUDED.tipo_documento,
 numero_documento = EXCLUDED.numero_documento,
 fecha_emision = EXCLUDED.fecha_emision,
 moneda = EXCLUDED.moneda,
 emisor_ruc = EXCLUDED.emisor_ruc,
 emisor_razon_social = EXCLUDED.emisor_razon_social,
 emisor_email = EXCLUDED.emisor_email,
 emisor_telefono = EXCLUDED.emisor_telefono,
 subtotal = EXCLUDED.subtotal,
 igv = EXCLUDED.igv,
 total = EXCLUDED.total,
 estado = EXCLUDED.estado,
 notas = EXCLUDED.notas,
 updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func scanDocument(rs interface{ Scan(dest ...any) error }) (*domain.Document, error) {
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
	d.EmisorRUC = ruc.String
	d.EmisorRazon = razon.String
	d.EmisorEmail = email.String
	d.EmisorTelefono = tel.String
	d.TextoRaw = texto.String
	d.Notas = notas.String
	return &d, nil
}

// Get by ID
func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	q, args, err := psql.Select(documentColumns...).
		From("gastos_documentos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, args...))
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
	b := psql.Select(documentColumns...).
		From("gastos_documentos").
		Where(sq.Eq{"concepto_gasto_id": conceptoID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if estado != "" {
		b = b.Where(sq.Eq{"estado": estado})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

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

// UpdateFields patches only the editable columns present in cmd
func (r *DocumentRepository) UpdateFields(ctx context.Context, id domain.DocumentID, cmd domain.UpdateCommand) error {
	b := psql.Update("gastos_documentos").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	if cmd.Tipo != nil {
		b = b.Set("tipo_documento", *cmd.Tipo)
	}
	if cmd.Numero != nil {
		b = b.Set("numero_documento", *cmd.Numero)
	}
	if cmd.FechaEmision != nil {
		b = b.Set("fecha_emision", *cmd.FechaEmision)
	}
	if cmd.Moneda != nil {
		b = b.Set("moneda", *cmd.Moneda)
	}
	if cmd.EmisorRUC != nil {
		b = b.Set("emisor_ruc", nullIfEmpty(*cmd.EmisorRUC))
	}
	if cmd.EmisorRazon != nil {
		b = b.Set("emisor_razon_social", nullIfEmpty(*cmd.EmisorRazon))
	}
	if cmd.EmisorEmail != nil {
		b = b.Set("emisor_email", nullIfEmpty(*cmd.EmisorEmail))
	}
	if cmd.EmisorTelefono != nil {
		b = b.Set("emisor_telefono", nullIfEmpty(*cmd.EmisorTelefono))
	}
	if cmd.Subtotal != nil {
		b = b.Set("subtotal", *cmd.Subtotal)
	}
	if cmd.IGV != nil {
		b = b.Set("igv", *cmd.IGV)
	}
	if cmd.Total != nil {
		b = b.Set("total", *cmd.Total)
	}
	if cmd.Estado != nil {
		b = b.Set("estado", *cmd.Estado)
	}
	if cmd.Notas != nil {
		b = b.Set("notas", nullIfEmpty(*cmd.Notas))
	}

	q, args, err := b.ToSql()
	if err != nil {
		return err
	}
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
	q, args, err := psql.Select("estado", "COUNT(*)").
		From("gastos_documentos").
		Where(sq.Eq{"concepto_gasto_id": conceptoID}).
		GroupBy("estado").
		ToSql()
	if err != nil {
		return domain.Resumen{}, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
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

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
