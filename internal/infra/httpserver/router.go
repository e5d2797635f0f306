package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appdocs "github.com/bryanwahyu/gastos-intake/internal/application/documents"
	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
	"github.com/bryanwahyu/gastos-intake/internal/middleware"
)

type Router struct {
	docsSvc   *appdocs.Service
	maxUpload int64
}

func NewRouter(docsSvc *appdocs.Service, maxUpload int64) http.Handler {
	r := &Router{docsSvc: docsSvc, maxUpload: maxUpload}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/conceptos/{conceptoID}/documentos", r.wrap(r.handleIngest))
		rt.Get("/conceptos/{conceptoID}/documentos", r.wrap(r.handleList))
		rt.Get("/conceptos/{conceptoID}/documentos/resumen", r.wrap(r.handleResumen))
		rt.Get("/conceptos/{conceptoID}/documentos/export", r.wrap(r.handleExport))
		rt.Get("/documentos/{id}", r.wrap(r.handleGet))
		rt.Patch("/documentos/{id}", r.wrap(r.handleUpdate))
		rt.Get("/documentos/{id}/url", r.wrap(r.handleViewURL))
		rt.Get("/documentos/{id}/auditoria", r.wrap(r.handleAuditTrail))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusError carries an explicit HTTP status through the error adapter
type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string { return e.err.Error() }
func (e statusError) Unwrap() error { return e.err }

func badRequest(err error) error { return statusError{code: http.StatusBadRequest, err: err} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var se statusError
		switch {
		case errors.As(err, &se):
			http.Error(w, se.Error(), se.code)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrUnauthenticated):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, extraction.ErrUnreadableFile):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, domain.ErrStorageUpload):
			http.Error(w, err.Error(), http.StatusBadGateway)
		case errors.Is(err, domain.ErrStorageSign):
			// transient: the document itself is fine, viewing can be retried
			http.Error(w, "file temporarily unavailable, retry later", http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/conceptos/{conceptoID}/documentos
// multipart form, field "archivo"
func (r *Router) handleIngest(w http.ResponseWriter, req *http.Request) error {
	conceptoID := chi.URLParam(req, "conceptoID")
	if err := middleware.ValidateConceptoID(conceptoID); err != nil {
		return badRequest(err)
	}

	usuarioID := middleware.GetUsuarioFromContext(req.Context())

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return badRequest(fmt.Errorf("invalid multipart body: %w", err))
	}
	file, header, err := req.FormFile("archivo")
	if err != nil {
		return badRequest(fmt.Errorf("missing file field 'archivo': %w", err))
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := middleware.ValidateContentType(contentType); err != nil {
		return badRequest(err)
	}
	if err := middleware.ValidateFileSize(header.Size, r.maxUpload); err != nil {
		return badRequest(err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest(fmt.Errorf("reading upload: %w", err))
	}

	middleware.IncrementIntakes()
	doc, err := r.docsSvc.Ingest(req.Context(), appdocs.IngestCommand{
		UsuarioID:   usuarioID,
		ConceptoID:  conceptoID,
		Filename:    middleware.SanitizeString(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
		Data:        data,
	})
	if err != nil {
		middleware.IncrementIntakesFailed()
		return err
	}
	if doc.RequiereValid {
		middleware.IncrementIntakesLowScore()
	}

	return writeJSON(w, http.StatusCreated, doc)
}

// GET /v1/conceptos/{conceptoID}/documentos?estado=&limit=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	conceptoID := chi.URLParam(req, "conceptoID")
	if err := middleware.ValidateConceptoID(conceptoID); err != nil {
		return badRequest(err)
	}

	estado := domain.Estado(req.URL.Query().Get("estado"))
	if estado != "" && !domain.ValidEstado(estado) {
		return badRequest(fmt.Errorf("invalid estado: %s", estado))
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	docs, err := r.docsSvc.List(req.Context(), conceptoID, estado, limit)
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return writeJSON(w, http.StatusOK, docs)
}

// GET /v1/conceptos/{conceptoID}/documentos/resumen
func (r *Router) handleResumen(w http.ResponseWriter, req *http.Request) error {
	conceptoID := chi.URLParam(req, "conceptoID")
	if err := middleware.ValidateConceptoID(conceptoID); err != nil {
		return badRequest(err)
	}
	res, err := r.docsSvc.Resumen(req.Context(), conceptoID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/conceptos/{conceptoID}/documentos/export?estado=
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	conceptoID := chi.URLParam(req, "conceptoID")
	if err := middleware.ValidateConceptoID(conceptoID); err != nil {
		return badRequest(err)
	}
	estado := domain.Estado(req.URL.Query().Get("estado"))
	if estado != "" && !domain.ValidEstado(estado) {
		return badRequest(fmt.Errorf("invalid estado: %s", estado))
	}

	b, err := r.docsSvc.ExportXLSX(req.Context(), conceptoID, estado)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("documentos_%s_%s.xlsx", conceptoID, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, err = w.Write(b)
	return err
}

// GET /v1/documentos/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocumentID(id); err != nil {
		return badRequest(err)
	}
	doc, err := r.docsSvc.Get(req.Context(), domain.DocumentID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, doc)
}

// PATCH /v1/documentos/{id}
// Body carries only the editable subset; requiere_validacion, archivo_path
// and created_at are not part of the wire contract at all.
func (r *Router) handleUpdate(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocumentID(id); err != nil {
		return badRequest(err)
	}

	var body struct {
		Tipo           *domain.Tipo   `json:"tipo_documento"`
		Numero         *string        `json:"numero_documento"`
		FechaEmision   *string        `json:"fecha_emision"`
		Moneda         *string        `json:"moneda"`
		EmisorRUC      *string        `json:"emisor_ruc"`
		EmisorRazon    *string        `json:"emisor_razon_social"`
		EmisorEmail    *string        `json:"emisor_email"`
		EmisorTelefono *string        `json:"emisor_telefono"`
		Subtotal       *float64       `json:"subtotal"`
		IGV            *float64       `json:"igv"`
		Total          *float64       `json:"total"`
		Estado         *domain.Estado `json:"estado"`
		Notas          *string        `json:"notas"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(err)
	}

	cmd := domain.UpdateCommand{
		Tipo:           body.Tipo,
		Numero:         body.Numero,
		Moneda:         body.Moneda,
		EmisorRUC:      body.EmisorRUC,
		EmisorRazon:    body.EmisorRazon,
		EmisorEmail:    body.EmisorEmail,
		EmisorTelefono: body.EmisorTelefono,
		Subtotal:       body.Subtotal,
		IGV:            body.IGV,
		Total:          body.Total,
		Estado:         body.Estado,
		Notas:          body.Notas,
	}
	if body.FechaEmision != nil {
		t, err := time.Parse("2006-01-02", *body.FechaEmision)
		if err != nil {
			return badRequest(fmt.Errorf("invalid fecha_emision: %w", err))
		}
		cmd.FechaEmision = &t
	}

	usuarioID := middleware.GetUsuarioFromContext(req.Context())
	doc, err := r.docsSvc.Update(req.Context(), usuarioID, domain.DocumentID(id), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, doc)
}

// GET /v1/documentos/{id}/url
func (r *Router) handleViewURL(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocumentID(id); err != nil {
		return badRequest(err)
	}
	url, err := r.docsSvc.ViewURL(req.Context(), domain.DocumentID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GET /v1/documentos/{id}/auditoria?limit=
func (r *Router) handleAuditTrail(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocumentID(id); err != nil {
		return badRequest(err)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	entries, err := r.docsSvc.AuditTrail(req.Context(), domain.DocumentID(id), limit)
	if err != nil {
		return err
	}
	if entries == nil {
		return writeJSON(w, http.StatusOK, []struct{}{})
	}
	return writeJSON(w, http.StatusOK, entries)
}
