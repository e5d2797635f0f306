package documents

import (
	"time"
)

// DocumentID tipe untuk Document
type DocumentID string

// Tipo enum de tipo_documento
type Tipo string

const (
	TipoFactura     Tipo = "factura"
	TipoBoleta      Tipo = "boleta"
	TipoRecibo      Tipo = "recibo"
	TipoTicket      Tipo = "ticket"
	TipoOrdenCompra Tipo = "orden_compra"
	TipoContrato    Tipo = "contrato"
	TipoOtro        Tipo = "otro"
)

// Estado enum del workflow de revisión
type Estado string

const (
	EstadoPendiente Estado = "pendiente"
	EstadoAprobado  Estado = "aprobado"
	EstadoRechazado Estado = "rechazado"
	EstadoRevision  Estado = "en_revision"
)

// NumeroSinReconocer is stored instead of NULL when the engine could not
// read a document number, so downstream aggregation never deals with NULLs.
const NumeroSinReconocer = "SIN-NUMERO"

// Aggregate Root: Document (una fila de gastos_documentos)
type Document struct {
	ID             DocumentID `json:"id"`
	ConceptoID     string     `json:"concepto_gasto_id"`
	UsuarioID      string     `json:"usuario_id"`
	ArchivoPath    string     `json:"archivo_path"` // private bucket path, never a public URL
	ArchivoNombre  string     `json:"archivo_nombre"`
	ArchivoTipo    string     `json:"archivo_tipo"`
	ArchivoTamano  int64      `json:"archivo_tamano"`
	Tipo           Tipo       `json:"tipo_documento"`
	Numero         string     `json:"numero_documento"`
	FechaEmision   time.Time  `json:"fecha_emision"`
	Moneda         string     `json:"moneda"`
	EmisorRUC      string     `json:"emisor_ruc,omitempty"`
	EmisorRazon    string     `json:"emisor_razon_social,omitempty"`
	EmisorEmail    string     `json:"emisor_email,omitempty"`
	EmisorTelefono string     `json:"emisor_telefono,omitempty"`
	Subtotal       float64    `json:"subtotal"`
	IGV            float64    `json:"igv"`
	Total          float64    `json:"total"`
	TextoRaw       string     `json:"texto_raw,omitempty"`
	Confianza      float64    `json:"confianza_ocr"`
	ProcesadoPor   string     `json:"procesado_por"`
	RequiereValid  bool       `json:"requiere_validacion"`
	Estado         Estado     `json:"estado"`
	Notas          string     `json:"notas,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ValidTipo reports whether t is one of the known document types.
func ValidTipo(t Tipo) bool {
	switch t {
	case TipoFactura, TipoBoleta, TipoRecibo, TipoTicket, TipoOrdenCompra, TipoContrato, TipoOtro:
		return true
	}
	return false
}

// ValidEstado reports whether e is a known workflow status.
func ValidEstado(e Estado) bool {
	switch e {
	case EstadoPendiente, EstadoAprobado, EstadoRechazado, EstadoRevision:
		return true
	}
	return false
}

// MontosCuadran checks subtotal + igv ≈ total with a one-cent tolerance.
// Advisory only; persistence never rejects a document over this.
func (d *Document) MontosCuadran() bool {
	diff := d.Subtotal + d.IGV - d.Total
	if diff < 0 {
		diff = -diff
	}
	return diff <= 0.01
}

// Resumen per-estado counts for a concepto's documents screen.
type Resumen struct {
	Pendientes int `json:"pendientes"`
	Aprobados  int `json:"aprobados"`
	Rechazados int `json:"rechazados"`
	EnRevision int `json:"en_revision"`
	Total      int `json:"total"`
}
