package mysql

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/gastos-intake/internal/domain/audit"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Save insert audit entry
func (r *AuditRepository) Save(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO documentos_auditoria
(documento_id, usuario_id, accion, detalle_json, created_at)
VALUES (?,?,?,?,?);`
	res, err := r.db.ExecContext(ctx, q,
		e.DocumentID, e.UsuarioID, e.Accion, nullIfEmpty(e.DetalleJSON), e.CreatedAt,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// ListByDocument newest first
func (r *AuditRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, documento_id, usuario_id, accion, detalle_json, created_at
FROM documentos_auditoria
WHERE documento_id=?
ORDER BY created_at DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		var detalle sql.NullString
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.UsuarioID, &e.Accion, &detalle, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.DetalleJSON = fromNull(detalle)
		out = append(out, &e)
	}
	return out, rows.Err()
}
