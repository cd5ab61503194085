package detector

import (
	"math"
	"testing"
)

func TestPoleConfidence(t *testing.T) {
	// solidity 0.8, aspect 6 -> 0.48
	if got := PoleConfidence(0.8, 6); math.Abs(got-0.48) > 1e-9 {
		t.Fatalf("got %v want 0.48", got)
	}
	// tall solid structure hits the 0.9 ceiling
	if got := PoleConfidence(1.0, 20); got != 0.9 {
		t.Fatalf("pole confidence must cap at 0.9, got %v", got)
	}
	if got := PoleConfidence(0, 10); got != 0 {
		t.Fatalf("zero solidity must score zero, got %v", got)
	}
}

func TestRectSignConfidence(t *testing.T) {
	if got := RectSignConfidence(0.5); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("got %v want 0.4", got)
	}
	// perfect rectangle hits the 0.8 ceiling
	if got := RectSignConfidence(1.0); got != 0.8 {
		t.Fatalf("rect confidence must cap at 0.8, got %v", got)
	}
	if got := RectSignConfidence(2.0); got != 0.8 {
		t.Fatalf("rect confidence must cap at 0.8 for inflated input, got %v", got)
	}
}

func TestCircleSignConfidence(t *testing.T) {
	if got := CircleSignConfidence(0.7); got != 0.7 {
		t.Fatalf("got %v want 0.7", got)
	}
	// support above 1 (more votes than the nominal circumference) clamps
	if got := CircleSignConfidence(1.8); got != 1.0 {
		t.Fatalf("circle confidence must clamp to 1, got %v", got)
	}
	if got := CircleSignConfidence(-0.1); got != 0 {
		t.Fatalf("negative support must clamp to 0, got %v", got)
	}
}
