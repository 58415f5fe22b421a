package vector

import "testing"

func TestPgVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		want  string
	}{
		{"empty", nil, "[0]"},
		{"single", []float32{0.5}, "[0.500000]"},
		{"multiple", []float32{1, -0.25}, "[1.000000,-0.250000]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pgVector(tt.input); got != tt.want {
				t.Errorf("pgVector(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
