package documents

import "testing"

func TestRequiereValidacionManual(t *testing.T) {
	tests := []struct {
		name      string
		confianza float64
		want      bool
	}{
		{"zero score", 0, true},
		{"just below threshold", 84.999, true},
		{"exactly at threshold", 85, false},
		{"just above threshold", 85.001, false},
		{"perfect score", 100, false},
		{"mid low", 40, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RequiereValidacionManual(tc.confianza, DefaultUmbralConfianza)
			if got != tc.want {
				t.Fatalf("RequiereValidacionManual(%v) = %v, want %v", tc.confianza, got, tc.want)
			}
		})
	}
}

func TestRequiereValidacionManualCustomUmbral(t *testing.T) {
	if !RequiereValidacionManual(89, 90) {
		t.Fatal("89 under umbral 90 should require validation")
	}
	if RequiereValidacionManual(90, 90) {
		t.Fatal("90 at umbral 90 should not require validation")
	}
}
