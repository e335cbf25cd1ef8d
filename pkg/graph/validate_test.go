package graph

import (
	"strings"
	"testing"
)

func TestValidateLinksClean(t *testing.T) {
	a := NewCurveLinks()
	b := NewCurveLinks()
	a[Right] = 1
	b[Left] = 0
	errs := ValidateLinks([]LinkTable{a, b}, 2)
	if len(errs) != 0 {
		t.Errorf("expected no findings, got %v", errs)
	}
}

func TestValidateLinksOutOfRange(t *testing.T) {
	p := NewPatchLinks()
	p[E] = 3
	p[NW] = -7
	errs := ValidateLinks([]LinkTable{p}, 2)
	if len(errs) != 2 {
		t.Fatalf("expected 2 findings, got %d: %v", len(errs), errs)
	}
	if !HasErrors(errs) {
		t.Error("HasErrors() = false, want true")
	}
	if errs[0].Slot != "E" || errs[1].Slot != "NW" {
		t.Errorf("slots = %q, %q, want E, NW", errs[0].Slot, errs[1].Slot)
	}
	if !strings.Contains(errs[0].Error(), "[error] element 0 E") {
		t.Errorf("unexpected message %q", errs[0].Error())
	}
}

func TestValidateLinksSelfIsWarning(t *testing.T) {
	a := NewCurveLinks()
	a[Left] = 0
	errs := ValidateLinks([]LinkTable{a}, 1)
	if len(errs) != 1 {
		t.Fatalf("expected 1 finding, got %v", errs)
	}
	if errs[0].Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", errs[0].Severity)
	}
	if HasErrors(errs) {
		t.Error("a self link alone should not count as an error")
	}
}

func TestLookupMaterial(t *testing.T) {
	m, err := LookupMaterial("Gold")
	if err != nil {
		t.Fatal(err)
	}
	if m != Gold {
		t.Errorf("LookupMaterial(Gold) = %+v", m)
	}
	if _, err := LookupMaterial("plywood"); err == nil {
		t.Error("expected error for unknown material")
	}
	names := MaterialNames()
	if len(names) != 7 || names[0] != "brass" {
		t.Errorf("MaterialNames() = %v", names)
	}
}

func TestColorClamp(t *testing.T) {
	c := Color4{R: -1, G: 0.5, B: 2, A: 1}.Clamp()
	if c != (Color4{R: 0, G: 0.5, B: 1, A: 1}) {
		t.Errorf("Clamp() = %+v", c)
	}
}
