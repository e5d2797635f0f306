package documents

import (
	"context"
	"io"
	"time"
)

// UpdateCommand carries the editable subset of a document. Nil fields are
// left untouched. There is deliberately no way to set RequiereValid or the
// stored path through this command.
type UpdateCommand struct {
	Tipo           *Tipo
	Numero         *string
	FechaEmision   *time.Time
	Moneda         *string
	EmisorRUC      *string
	EmisorRazon    *string
	EmisorEmail    *string
	EmisorTelefono *string
	Subtotal       *float64
	IGV            *float64
	Total          *float64
	Estado         *Estado
	Notas          *string
}

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Get(ctx context.Context, id DocumentID) (*Document, error)
	// ListByConcepto returns documents of one expense concept, newest first.
	// estado == "" means all statuses.
	ListByConcepto(ctx context.Context, conceptoID string, estado Estado, limit int) ([]*Document, error)
	UpdateFields(ctx context.Context, id DocumentID, cmd UpdateCommand) error
	ResumenPorEstado(ctx context.Context, conceptoID string) (Resumen, error)
}

// FileStore port (interface para el Storage Gateway: bucket privado + signed URLs)
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}
