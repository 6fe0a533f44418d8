package membership

import (
	"errors"
	"testing"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
)

func TestPolicy_Allows(t *testing.T) {
	const (
		p = models.StatusPending
		a = models.StatusApproved
		r = models.StatusRejected
	)
	tests := []struct {
		from, to                      string
		strict, revocable, permissive bool
	}{
		{p, p, true, true, true},
		{p, a, true, true, true},
		{p, r, true, true, true},
		{a, a, true, true, true},
		{a, r, false, true, true},
		{a, p, false, false, true},
		{r, a, false, true, true},
		{r, p, false, false, true},
		{r, r, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := PolicyStrict.Allows(tt.from, tt.to); got != tt.strict {
				t.Errorf("strict = %v, want %v", got, tt.strict)
			}
			if got := PolicyRevocable.Allows(tt.from, tt.to); got != tt.revocable {
				t.Errorf("revocable = %v, want %v", got, tt.revocable)
			}
			if got := PolicyPermissive.Allows(tt.from, tt.to); got != tt.permissive {
				t.Errorf("permissive = %v, want %v", got, tt.permissive)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"", DefaultPolicy},
		{"strict", PolicyStrict},
		{" Revocable ", PolicyRevocable},
		{"PERMISSIVE", PolicyPermissive},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePolicy(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParsePolicy("lenient"); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("ParsePolicy(lenient) err = %v, want ErrInvalidInput", err)
	}
}
