package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	auditdomain "github.com/bryanwahyu/gastos-intake/internal/domain/audit"
	domain "github.com/bryanwahyu/gastos-intake/internal/domain/documents"
	"github.com/bryanwahyu/gastos-intake/internal/domain/extraction"
)

// ---- fakes ----

type repoFake struct {
	SaveFn         func(ctx context.Context, d *domain.Document) error
	GetFn          func(ctx context.Context, id domain.DocumentID) (*domain.Document, error)
	UpdateFieldsFn func(ctx context.Context, id domain.DocumentID, cmd domain.UpdateCommand) error

	saved []*domain.Document
}

func (r *repoFake) Save(ctx context.Context, d *domain.Document) error {
	if r.SaveFn != nil {
		if err := r.SaveFn(ctx, d); err != nil {
			return err
		}
	}
	r.saved = append(r.saved, d)
	return nil
}

func (r *repoFake) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	if r.GetFn != nil {
		return r.GetFn(ctx, id)
	}
	for _, d := range r.saved {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *repoFake) ListByConcepto(ctx context.Context, conceptoID string, estado domain.Estado, limit int) ([]*domain.Document, error) {
	var out []*domain.Document
	for _, d := range r.saved {
		if d.ConceptoID == conceptoID && (estado == "" || d.Estado == estado) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *repoFake) UpdateFields(ctx context.Context, id domain.DocumentID, cmd domain.UpdateCommand) error {
	if r.UpdateFieldsFn != nil {
		return r.UpdateFieldsFn(ctx, id, cmd)
	}
	return nil
}

func (r *repoFake) ResumenPorEstado(ctx context.Context, conceptoID string) (domain.Resumen, error) {
	var res domain.Resumen
	for _, d := range r.saved {
		if d.ConceptoID != conceptoID {
			continue
		}
		res.Total++
		if d.Estado == domain.EstadoPendiente {
			res.Pendientes++
		}
	}
	return res, nil
}

type fileStoreFake struct {
	UploadFn    func(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
	SignedURLFn func(ctx context.Context, path string, ttl time.Duration) (string, error)

	uploadedKeys []string
	signCalls    int
}

func (f *fileStoreFake) Upload(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error) {
	if f.UploadFn != nil {
		return f.UploadFn(ctx, key, contentType, size, r)
	}
	f.uploadedKeys = append(f.uploadedKeys, key)
	return key, nil
}

func (f *fileStoreFake) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	f.signCalls++
	if f.SignedURLFn != nil {
		return f.SignedURLFn(ctx, path, ttl)
	}
	return "https://signed.example/" + path, nil
}

type engineFake struct {
	ExtractFn func(ctx context.Context, up extraction.Upload) (*extraction.Result, error)
	calls     int
}

func (e *engineFake) Extract(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
	e.calls++
	return e.ExtractFn(ctx, up)
}

type auditFake struct {
	entries []*auditdomain.Entry
}

func (a *auditFake) Save(ctx context.Context, e *auditdomain.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *auditFake) ListByDocument(ctx context.Context, documentID string, limit int) ([]*auditdomain.Entry, error) {
	return a.entries, nil
}

type urlCacheFake struct {
	store map[string]string
	ttls  map[string]time.Duration
}

func newURLCacheFake() *urlCacheFake {
	return &urlCacheFake{store: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *urlCacheFake) Get(ctx context.Context, path string) (string, bool) {
	v, ok := c.store[path]
	return v, ok
}

func (c *urlCacheFake) Set(ctx context.Context, path, url string, ttl time.Duration) {
	c.store[path] = url
	c.ttls[path] = ttl
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ---- helpers ----

var testNow = time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)

func newService(repo *repoFake, files *fileStoreFake, eng *engineFake) *Service {
	return &Service{
		Repo:   repo,
		Files:  files,
		Engine: eng,
		Clock:  fixedClock{t: testNow},
		Log:    zap.NewNop(),
		Cfg: Config{
			UmbralConfianza: 85,
			SignedURLTTL:    time.Hour,
			MonedaBase:      "PEN",
		},
	}
}

func baseCommand() IngestCommand {
	return IngestCommand{
		UsuarioID:   "user-1",
		ConceptoID:  "concepto-1",
		Filename:    "factura.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Data:        []byte("data"),
	}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

// ---- tests ----

func TestIngestHighConfidence(t *testing.T) {
	repo := &repoFake{}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{
			Tipo:      strPtr("factura"),
			Total:     f64Ptr(118.00),
			Confianza: 92,
			Engine:    "heuristico",
		}, nil
	}}
	svc := newService(repo, files, eng)

	doc, err := svc.Ingest(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if doc.RequiereValid {
		t.Error("confidence 92 must not require manual validation")
	}
	if doc.Estado != domain.EstadoPendiente {
		t.Errorf("estado = %q, want pendiente", doc.Estado)
	}
	if doc.Total != 118.00 {
		t.Errorf("total = %v, want 118.00", doc.Total)
	}
	if doc.Tipo != domain.TipoFactura {
		t.Errorf("tipo = %q, want factura", doc.Tipo)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected exactly one saved document, got %d", len(repo.saved))
	}
}

func TestIngestLowConfidenceSentinels(t *testing.T) {
	repo := &repoFake{}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 40, Engine: "heuristico"}, nil
	}}
	svc := newService(repo, files, eng)

	doc, err := svc.Ingest(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if !doc.RequiereValid {
		t.Error("confidence 40 must require manual validation")
	}
	if doc.Numero != domain.NumeroSinReconocer {
		t.Errorf("numero = %q, want sentinel %q", doc.Numero, domain.NumeroSinReconocer)
	}
	if doc.Tipo != domain.TipoOtro {
		t.Errorf("tipo = %q, want otro", doc.Tipo)
	}
	if !doc.FechaEmision.Equal(testNow) {
		t.Errorf("fecha_emision = %v, want upload date %v", doc.FechaEmision, testNow)
	}
	if doc.Moneda != "PEN" {
		t.Errorf("moneda = %q, want home currency PEN", doc.Moneda)
	}
	if doc.Subtotal != 0 || doc.IGV != 0 || doc.Total != 0 {
		t.Errorf("montos = %v/%v/%v, want 0/0/0", doc.Subtotal, doc.IGV, doc.Total)
	}
}

func TestIngestBoundaryConfidence(t *testing.T) {
	tests := []struct {
		confianza float64
		want      bool
	}{
		{84.999, true},
		{85, false},
	}
	for _, tc := range tests {
		repo := &repoFake{}
		eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
			return &extraction.Result{Confianza: tc.confianza}, nil
		}}
		svc := newService(repo, &fileStoreFake{}, eng)

		doc, err := svc.Ingest(context.Background(), baseCommand())
		if err != nil {
			t.Fatalf("Ingest(%v) error: %v", tc.confianza, err)
		}
		if doc.RequiereValid != tc.want {
			t.Errorf("confianza %v: requiere_validacion = %v, want %v", tc.confianza, doc.RequiereValid, tc.want)
		}
	}
}

func TestIngestUnauthenticated(t *testing.T) {
	repo := &repoFake{}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 90}, nil
	}}
	svc := newService(repo, files, eng)

	cmd := baseCommand()
	cmd.UsuarioID = ""
	_, err := svc.Ingest(context.Background(), cmd)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
	// pre-flight: no I/O at all
	if eng.calls != 0 {
		t.Error("engine must not run without an actor identity")
	}
	if len(files.uploadedKeys) != 0 {
		t.Error("nothing must be uploaded without an actor identity")
	}
	if len(repo.saved) != 0 {
		t.Error("nothing must be persisted without an actor identity")
	}
}

func TestIngestExtractionErrorIsTerminal(t *testing.T) {
	repo := &repoFake{}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return nil, extraction.ErrUnreadableFile
	}}
	svc := newService(repo, files, eng)

	_, err := svc.Ingest(context.Background(), baseCommand())
	if !errors.Is(err, extraction.ErrUnreadableFile) {
		t.Fatalf("error = %v, want ErrUnreadableFile", err)
	}
	if len(files.uploadedKeys) != 0 {
		t.Error("no blob must be stored when extraction fails")
	}
	if len(repo.saved) != 0 {
		t.Error("no record must be created when extraction fails")
	}
}

func TestIngestUploadFailureCreatesNoRow(t *testing.T) {
	repo := &repoFake{}
	files := &fileStoreFake{UploadFn: func(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error) {
		return "", fmt.Errorf("bucket unavailable")
	}}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 95}, nil
	}}
	svc := newService(repo, files, eng)

	_, err := svc.Ingest(context.Background(), baseCommand())
	if !errors.Is(err, domain.ErrStorageUpload) {
		t.Fatalf("error = %v, want ErrStorageUpload", err)
	}
	if len(repo.saved) != 0 {
		t.Fatal("upload-then-record ordering violated: row exists for unstored blob")
	}
}

func TestIngestInsertFailureRetainsBlob(t *testing.T) {
	repo := &repoFake{SaveFn: func(ctx context.Context, d *domain.Document) error {
		return fmt.Errorf("deadlock")
	}}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 95}, nil
	}}
	svc := newService(repo, files, eng)

	_, err := svc.Ingest(context.Background(), baseCommand())
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	// no compensating delete: the blob stays as a recoverable orphan
	if len(files.uploadedKeys) != 1 {
		t.Fatalf("uploaded blobs = %d, want 1 retained orphan", len(files.uploadedKeys))
	}
}

func TestIngestStorageKeyIsTraceable(t *testing.T) {
	repo := &repoFake{}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 90}, nil
	}}
	svc := newService(repo, files, eng)

	cmd := baseCommand()
	cmd.Filename = "mi factura/rara.jpg"
	doc, err := svc.Ingest(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	want := fmt.Sprintf("user-1/%d_mi-factura_rara.jpg", testNow.UnixMilli())
	if doc.ArchivoPath != want {
		t.Errorf("archivo_path = %q, want %q", doc.ArchivoPath, want)
	}
	if strings.HasPrefix(doc.ArchivoPath, "http") {
		t.Error("stored path must never be a resolvable URL")
	}
}

func TestIngestRepeatedUploadsAreIndependent(t *testing.T) {
	// re-submitting the same file creates a second document; there is no
	// dedup key and that is documented behavior
	repo := &repoFake{}
	files := &fileStoreFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 90}, nil
	}}
	svc := newService(repo, files, eng)

	d1, err := svc.Ingest(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	d2, err := svc.Ingest(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if len(repo.saved) != 2 {
		t.Fatalf("saved documents = %d, want 2", len(repo.saved))
	}
	if d1.ID == d2.ID {
		t.Error("repeated uploads must produce distinct documents")
	}
}

func TestIngestRecordsAuditEntry(t *testing.T) {
	repo := &repoFake{}
	aud := &auditFake{}
	eng := &engineFake{ExtractFn: func(ctx context.Context, up extraction.Upload) (*extraction.Result, error) {
		return &extraction.Result{Confianza: 90}, nil
	}}
	svc := newService(repo, &fileStoreFake{}, eng)
	svc.Audit = aud

	doc, err := svc.Ingest(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(aud.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(aud.entries))
	}
	e := aud.entries[0]
	if e.Accion != auditdomain.AccionCrear || e.DocumentID != string(doc.ID) {
		t.Errorf("audit entry = %+v, want crear for %s", e, doc.ID)
	}
}

func TestUpdateValidatesAndAudits(t *testing.T) {
	existing := &domain.Document{
		ID:         "11111111-2222-3333-4444-555555555555",
		ConceptoID: "concepto-1",
		Estado:     domain.EstadoPendiente,
	}
	repo := &repoFake{saved: []*domain.Document{existing}}
	aud := &auditFake{}
	svc := newService(repo, &fileStoreFake{}, &engineFake{})
	svc.Audit = aud

	estado := domain.EstadoAprobado
	_, err := svc.Update(context.Background(), "revisor-1", existing.ID, domain.UpdateCommand{Estado: &estado})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(aud.entries) != 1 || aud.entries[0].Accion != auditdomain.AccionAprobar {
		t.Fatalf("audit = %+v, want one aprobar entry", aud.entries)
	}

	bad := domain.Estado("archivado")
	if _, err := svc.Update(context.Background(), "revisor-1", existing.ID, domain.UpdateCommand{Estado: &bad}); err == nil {
		t.Fatal("unknown estado must be rejected")
	}

	if _, err := svc.Update(context.Background(), "", existing.ID, domain.UpdateCommand{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestViewURL(t *testing.T) {
	doc := &domain.Document{
		ID:          "11111111-2222-3333-4444-555555555555",
		ArchivoPath: "user-1/1_factura.jpg",
	}
	repo := &repoFake{saved: []*domain.Document{doc}}

	t.Run("issues a fresh signed url", func(t *testing.T) {
		files := &fileStoreFake{}
		svc := newService(repo, files, &engineFake{})
		url, err := svc.ViewURL(context.Background(), doc.ID)
		if err != nil {
			t.Fatalf("ViewURL returned error: %v", err)
		}
		if url != "https://signed.example/user-1/1_factura.jpg" {
			t.Errorf("url = %q", url)
		}
	})

	t.Run("sign failure is transient and leaves the document intact", func(t *testing.T) {
		files := &fileStoreFake{SignedURLFn: func(ctx context.Context, path string, ttl time.Duration) (string, error) {
			return "", fmt.Errorf("gateway timeout")
		}}
		svc := newService(repo, files, &engineFake{})
		_, err := svc.ViewURL(context.Background(), doc.ID)
		if !errors.Is(err, domain.ErrStorageSign) {
			t.Fatalf("error = %v, want ErrStorageSign", err)
		}
		got, gerr := svc.Get(context.Background(), doc.ID)
		if gerr != nil || got.ArchivoPath != doc.ArchivoPath {
			t.Fatal("document must remain queryable after a sign failure")
		}
	})

	t.Run("caches below the url lifetime", func(t *testing.T) {
		files := &fileStoreFake{}
		urls := newURLCacheFake()
		svc := newService(repo, files, &engineFake{})
		svc.URLs = urls

		if _, err := svc.ViewURL(context.Background(), doc.ID); err != nil {
			t.Fatalf("ViewURL returned error: %v", err)
		}
		if ttl := urls.ttls[doc.ArchivoPath]; ttl != time.Hour-5*time.Minute {
			t.Errorf("cache ttl = %v, want 55m", ttl)
		}
		if _, err := svc.ViewURL(context.Background(), doc.ID); err != nil {
			t.Fatalf("second ViewURL returned error: %v", err)
		}
		if files.signCalls != 1 {
			t.Errorf("sign calls = %d, want 1 (second view served from cache)", files.signCalls)
		}
	})
}

func TestResumenCountsPendientes(t *testing.T) {
	repo := &repoFake{saved: []*domain.Document{
		{ID: "a", ConceptoID: "c1", Estado: domain.EstadoPendiente},
		{ID: "b", ConceptoID: "c1", Estado: domain.EstadoAprobado},
		{ID: "c", ConceptoID: "c2", Estado: domain.EstadoPendiente},
	}}
	svc := newService(repo, &fileStoreFake{}, &engineFake{})

	res, err := svc.Resumen(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Resumen returned error: %v", err)
	}
	if res.Total != 2 || res.Pendientes != 1 {
		t.Errorf("resumen = %+v, want total 2, pendientes 1", res)
	}
}
