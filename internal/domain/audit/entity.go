package audit

import "time"

// Accion taken on a document by a reviewer or by the intake flow itself.
type Accion string

const (
	AccionCrear    Accion = "crear"
	AccionEditar   Accion = "editar"
	AccionAprobar  Accion = "aprobar"
	AccionRechazar Accion = "rechazar"
	AccionRevisar  Accion = "revisar"
)

// Entry represents a persisted audit trail row for a document
type Entry struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"documento_id"`
	UsuarioID   string    `json:"usuario_id"`
	Accion      Accion    `json:"accion"`
	DetalleJSON string    `json:"detalle_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
