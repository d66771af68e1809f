package runner

import "testing"

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1234", true},
		{"1", true},
		{"", false},
		{"12a4", false},
		{"self", false},
	}
	for _, tt := range tests {
		if got := isNumeric(tt.in); got != tt.want {
			t.Errorf("isNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProcProbeUnknownProcess(t *testing.T) {
	if got := (ProcProbe{}).Count("definitely-not-a-real-process-name"); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}
