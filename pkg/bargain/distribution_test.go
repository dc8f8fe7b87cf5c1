package bargain

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		d      Distribution
		n      int
		pool   int
		reason string
	}{
		{"valid", Distribution{3, 3, 2, 2}, 4, 10, ""},
		{"zero pool", Distribution{0, 0}, 2, 0, ""},
		{"too short", Distribution{10}, 2, 10, "length"},
		{"too long", Distribution{5, 5, 0}, 2, 10, "length"},
		{"nil", nil, 1, 0, "length"},
		{"sum low", Distribution{4, 4}, 2, 10, "sum"},
		{"sum high", Distribution{6, 6}, 2, 10, "sum"},
		{"negative", Distribution{11, -1}, 2, 10, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.d, tt.n, tt.pool)
			if tt.reason == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var pe *ProposalError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProposalError, got %v", err)
			}
			if pe.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, pe.Reason)
			}
		})
	}
}

func TestDistributionHelpers(t *testing.T) {
	d := Distribution{4, 1, 0, 2}
	if d.Sum() != 7 {
		t.Errorf("sum: expected 7, got %d", d.Sum())
	}
	if d.Max() != 4 || d.Min() != 0 {
		t.Errorf("max/min: got %d/%d", d.Max(), d.Min())
	}
	if v, ok := d.Share(3); !ok || v != 2 {
		t.Errorf("share(3): got %d %v", v, ok)
	}
	if _, ok := d.Share(4); ok {
		t.Error("share(4) should be out of range")
	}
	if _, ok := d.Share(-1); ok {
		t.Error("share(-1) should be out of range")
	}
	c := d.Clone()
	c[0] = 9
	if d[0] != 4 {
		t.Error("clone should not alias")
	}
	if d.String() != "[4 1 0 2]" {
		t.Errorf("string: got %s", d.String())
	}
}
