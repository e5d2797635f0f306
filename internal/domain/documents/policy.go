package documents

// DefaultUmbralConfianza is the confidence boundary below which a freshly
// created document is flagged for manual validation. The flag is computed
// once at creation and never recomputed after a reviewer has touched the
// record; downstream consumers rely on Estado instead.
const DefaultUmbralConfianza = 85.0

// RequiereValidacionManual applies the confidence-threshold policy:
// scores strictly below the umbral require a human pass.
func RequiereValidacionManual(confianza, umbral float64) bool {
	return confianza < umbral
}
