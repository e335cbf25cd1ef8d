package graph

import (
	"errors"
	"testing"
)

func TestPatchDirectionIsCardinal(t *testing.T) {
	tests := []struct {
		d    PatchDirection
		want bool
	}{
		{N, true}, {NE, false}, {E, true}, {SE, false},
		{S, true}, {SW, false}, {W, true}, {NW, false},
		{PatchDirection(8), false}, {PatchDirection(-1), false},
	}
	for _, tt := range tests {
		if got := tt.d.IsCardinal(); got != tt.want {
			t.Errorf("%v.IsCardinal() = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestPatchDirectionOpposite(t *testing.T) {
	tests := []struct {
		d, want PatchDirection
	}{
		{N, S}, {NE, SW}, {E, W}, {SE, NW},
		{S, N}, {SW, NE}, {W, E}, {NW, SE},
	}
	for _, tt := range tests {
		if got := tt.d.Opposite(); got != tt.want {
			t.Errorf("%v.Opposite() = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestPatchDirectionRotate(t *testing.T) {
	if got := N.Rotate(2); got != E {
		t.Errorf("N.Rotate(2) = %v, want E", got)
	}
	if got := N.Rotate(-1); got != NW {
		t.Errorf("N.Rotate(-1) = %v, want NW", got)
	}
	if got := W.Rotate(10); got != N {
		t.Errorf("W.Rotate(10) = %v, want N", got)
	}
}

func TestParsePatchDirection(t *testing.T) {
	tests := []struct {
		in   string
		want PatchDirection
	}{
		{"n", N}, {"NE", NE}, {"north-east", NE}, {"southwest", SW},
		{"West", W}, {"nw", NW}, {"south_east", SE},
	}
	for _, tt := range tests {
		got, err := ParsePatchDirection(tt.in)
		if err != nil {
			t.Errorf("ParsePatchDirection(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePatchDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePatchDirection("up"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestRequireCardinal(t *testing.T) {
	if err := RequireCardinal(S); err != nil {
		t.Errorf("RequireCardinal(S): %v", err)
	}
	if err := RequireCardinal(NE); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("RequireCardinal(NE): expected ErrInvalidDirection, got %v", err)
	}
}

func TestCurveDirection(t *testing.T) {
	if Left.Opposite() != Right || Right.Opposite() != Left {
		t.Error("Opposite should swap left and right")
	}
	for _, in := range []string{"left", "L", " Left "} {
		if d, err := ParseCurveDirection(in); err != nil || d != Left {
			t.Errorf("ParseCurveDirection(%q) = %v, %v", in, d, err)
		}
	}
	if _, err := ParseCurveDirection("up"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
	if CurveDirection(5).Valid() {
		t.Error("CurveDirection(5) should be invalid")
	}
}

func TestNewLinksAreEmpty(t *testing.T) {
	for _, n := range NewCurveLinks() {
		if n != NoNeighbor {
			t.Errorf("curve link = %d, want NoNeighbor", n)
		}
	}
	for _, n := range NewPatchLinks() {
		if n != NoNeighbor {
			t.Errorf("patch link = %d, want NoNeighbor", n)
		}
	}
}
