package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/gastos-intake/internal/application"
	auditdomain "github.com/bryanwahyu/gastos-intake/internal/domain/audit"
	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
)

// Config carries the injected intake defaults so the coordinator stays
// testable with deterministic inputs.
type Config struct {
	UmbralConfianza float64
	SignedURLTTL    time.Duration
	MonedaBase      string
}

// URLCache is an optional short-term cache for issued signed URLs. Entries
// must never outlive the URL itself; Set receives an already-shortened TTL.
type URLCache interface {
	Get(ctx context.Context, path string) (string, bool)
	Set(ctx context.Context, path, url string, ttl time.Duration)
}

// Service implements the intake use-cases: ingest, review reads/writes and
// signed-URL resolution. Audit and URLs may be nil.
type Service struct {
	Repo   domain.Repository
	Files  domain.FileStore
	Engine extraction.Engine
	Audit  auditdomain.Repository
	URLs   URLCache
	Clock  application.Clock
	Log    *zap.Logger
	Cfg    Config
}

//
// ==== USE CASES ====
//

// IngestCommand is one upload attempt: the raw file plus the acting user.
type IngestCommand struct {
	UsuarioID   string
	ConceptoID  string
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Ingest turns an upload into a durable document: extract -> store blob ->
// insert row, in that order. The ordering is the saga's only mitigation: a
// dangling blob is recoverable garbage, a row pointing at a missing blob is
// not, so the row is always written last and storage failures are terminal.
func (s *Service) Ingest(ctx context.Context, cmd IngestCommand) (*domain.Document, error) {
	// pre-flight, before any I/O
	if strings.TrimSpace(cmd.UsuarioID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	res, err := s.Engine.Extract(ctx, extraction.Upload{
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		Size:        cmd.Size,
		Data:        cmd.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	now := s.Clock.Now()
	key := fmt.Sprintf("%s/%d_%s", cmd.UsuarioID, now.UnixMilli(), sanitizeFilename(cmd.Filename))

	path, err := s.Files.Upload(ctx, key, cmd.ContentType, cmd.Size, bytes.NewReader(cmd.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUpload, err)
	}

	doc := s.normalize(cmd, res, path, now)

	if err := s.Repo.Save(ctx, doc); err != nil {
		// the blob stays behind as a recoverable orphan; a compensating
		// delete could itself fail silently, the sweep job handles these
		s.Log.Warn("document insert failed, blob retained",
			zap.String("archivo_path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.registrarAuditoria(ctx, doc.ID, cmd.UsuarioID, auditdomain.AccionCrear, map[string]any{
		"confianza_ocr":       doc.Confianza,
		"requiere_validacion": doc.RequiereValid,
		"procesado_por":       doc.ProcesadoPor,
	})

	return doc, nil
}

// normalize maps the extraction result onto a storable document, replacing
// unrecognized values with sentinels.
func (s *Service) normalize(cmd IngestCommand, res *extraction.Result, path string, now time.Time) *domain.Document {
	engine := res.Engine
	if engine == "" {
		engine = "desconocido"
	}
	return &domain.Document{
		ID:             domain.DocumentID(uuid.New().String()),
		ConceptoID:     cmd.ConceptoID,
		UsuarioID:      cmd.UsuarioID,
		ArchivoPath:    path,
		ArchivoNombre:  cmd.Filename,
		ArchivoTipo:    cmd.ContentType,
		ArchivoTamano:  cmd.Size,
		Tipo:           domain.NormalizeTipo(res.Tipo),
		Numero:         domain.NormalizeNumero(res.Numero),
		FechaEmision:   domain.NormalizeFecha(res.FechaEmision, now),
		Moneda:         domain.NormalizeMoneda(res.Moneda, s.Cfg.MonedaBase),
		EmisorRUC:      domain.OptString(res.EmisorRUC),
		EmisorRazon:    domain.OptString(res.EmisorRazon),
		EmisorEmail:    domain.OptString(res.EmisorEmail),
		EmisorTelefono: domain.OptString(res.EmisorTelefono),
		Subtotal:       domain.NormalizeMonto(res.Subtotal),
		IGV:            domain.NormalizeMonto(res.IGV),
		Total:          domain.NormalizeMonto(res.Total),
		TextoRaw:       res.TextoRaw,
		Confianza:      res.Confianza,
		ProcesadoPor:   engine,
		RequiereValid:  domain.RequiereValidacionManual(res.Confianza, s.Cfg.UmbralConfianza),
		Estado:         domain.EstadoPendiente,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Get ambil 1 document by id
func (s *Service) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	return s.Repo.Get(ctx, id)
}

// List documents of one concepto, optionally filtered by estado
func (s *Service) List(ctx context.Context, conceptoID string, estado domain.Estado, limit int) ([]*domain.Document, error) {
	if estado != "" && !domain.ValidEstado(estado) {
		return nil, fmt.Errorf("invalid estado: %s", estado)
	}
	return s.Repo.ListByConcepto(ctx, conceptoID, estado, limit)
}

// Resumen per-estado counts for the documents screen header
func (s *Service) Resumen(ctx context.Context, conceptoID string) (domain.Resumen, error) {
	return s.Repo.ResumenPorEstado(ctx, conceptoID)
}

// Update applies reviewer corrections. Only the editable subset is
// reachable; requiere_validacion stays whatever intake computed.
func (s *Service) Update(ctx context.Context, usuarioID string, id domain.DocumentID, cmd domain.UpdateCommand) (*domain.Document, error) {
	if strings.TrimSpace(usuarioID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if cmd.Estado != nil && !domain.ValidEstado(*cmd.Estado) {
		return nil, fmt.Errorf("invalid estado: %s", *cmd.Estado)
	}
	if cmd.Tipo != nil && !domain.ValidTipo(*cmd.Tipo) {
		return nil, fmt.Errorf("invalid tipo_documento: %s", *cmd.Tipo)
	}

	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateFields(ctx, id, cmd); err != nil {
		return nil, err
	}

	s.registrarAuditoria(ctx, id, usuarioID, accionDeCambio(existing.Estado, cmd.Estado), nil)

	return s.Repo.Get(ctx, id)
}

// ViewURL resolves a fresh signed URL for the stored file. A sign failure
// is display-only degradation: the document row is untouched and the next
// request simply tries again.
func (s *Service) ViewURL(ctx context.Context, id domain.DocumentID) (string, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if s.URLs != nil {
		if url, ok := s.URLs.Get(ctx, doc.ArchivoPath); ok {
			return url, nil
		}
	}

	url, err := s.Files.SignedURL(ctx, doc.ArchivoPath, s.Cfg.SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageSign, err)
	}

	if s.URLs != nil {
		// keep cached entries well inside the URL's lifetime
		if margin := s.Cfg.SignedURLTTL - 5*time.Minute; margin > 0 {
			s.URLs.Set(ctx, doc.ArchivoPath, url, margin)
		}
	}
	return url, nil
}

// AuditTrail lists recorded actions for a document, newest first.
func (s *Service) AuditTrail(ctx context.Context, id domain.DocumentID, limit int) ([]*auditdomain.Entry, error) {
	if s.Audit == nil {
		return nil, nil
	}
	return s.Audit.ListByDocument(ctx, string(id), limit)
}

// registrarAuditoria records best-effort; the trail never blocks the flow.
func (s *Service) registrarAuditoria(ctx context.Context, id domain.DocumentID, usuarioID string, accion auditdomain.Accion, detalle map[string]any) {
	if s.Audit == nil {
		return
	}
	var detalleJSON string
	if detalle != nil {
		if b, err := json.Marshal(detalle); err == nil {
			detalleJSON = string(b)
		}
	}
	e := &auditdomain.Entry{
		DocumentID:  string(id),
		UsuarioID:   usuarioID,
		Accion:      accion,
		DetalleJSON: detalleJSON,
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Audit.Save(ctx, e); err != nil {
		s.Log.Warn("audit entry not saved", zap.String("documento_id", string(id)), zap.Error(err))
	}
}

func accionDeCambio(prev domain.Estado, next *domain.Estado) auditdomain.Accion {
	if next == nil || *next == prev {
		return auditdomain.AccionEditar
	}
	switch *next {
	case domain.EstadoAprobado:
		return auditdomain.AccionAprobar
	case domain.EstadoRechazado:
		return auditdomain.AccionRechazar
	case domain.EstadoRevision:
		return auditdomain.AccionRevisar
	}
	return auditdomain.AccionEditar
}

// sanitizeFilename keeps the storage key flat and traceable: one path
// segment per uploader, no separators or control characters from the
// original name.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "documento"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r < 32:
			b.WriteRune('_')
		case r == ' ':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
