package features

import (
	"image"
	"math"
	"testing"
)

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Keypoint
		want float64
	}{
		{"identical", Keypoint{X: 5, Y: 5, Size: 6}, Keypoint{X: 5, Y: 5, Size: 6}, 1},
		{"disjoint", Keypoint{X: 0, Y: 0, Size: 6}, Keypoint{X: 20, Y: 0, Size: 6}, 0},
		{"touching", Keypoint{X: 0, Y: 0, Size: 6}, Keypoint{X: 6, Y: 0, Size: 6}, 0},
		{"contained", Keypoint{X: 0, Y: 0, Size: 2}, Keypoint{X: 0, Y: 0, Size: 4}, 0.25},
		{"zero size", Keypoint{X: 0, Y: 0, Size: 0}, Keypoint{X: 0, Y: 0, Size: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlap(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Overlap: got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestOverlap_PartialIsSymmetricAndBounded(t *testing.T) {
	a := Keypoint{X: 0, Y: 0, Size: 6}
	b := Keypoint{X: 2, Y: 1, Size: 8}

	ab, ba := Overlap(a, b), Overlap(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("not symmetric: %g vs %g", ab, ba)
	}
	if ab <= 0 || ab >= 1 {
		t.Errorf("partial overlap out of (0,1): %g", ab)
	}

	closer := Overlap(a, Keypoint{X: 1, Y: 0, Size: 6})
	farther := Overlap(a, Keypoint{X: 4, Y: 0, Size: 6})
	if closer <= farther {
		t.Errorf("overlap should shrink with distance: %g <= %g", closer, farther)
	}
}

func TestRetainBest(t *testing.T) {
	kps := []Keypoint{
		{X: 0, Response: 10},
		{X: 1, Response: 30},
		{X: 2, Response: 20},
		{X: 3, Response: 30},
	}

	got := RetainBest(kps, 2)
	if len(got) != 2 {
		t.Fatalf("got %d keypoints, want 2", len(got))
	}
	if got[0].X != 1 || got[1].X != 3 {
		t.Errorf("got X %g,%g, want 1,3", got[0].X, got[1].X)
	}
	if kps[0].X != 0 {
		t.Error("input slice was reordered")
	}

	if len(RetainBest(kps, 0)) != 4 {
		t.Error("n=0 should keep everything")
	}
	if len(RetainBest(kps, 10)) != 4 {
		t.Error("n larger than input should keep everything")
	}
}

func TestFilterInside(t *testing.T) {
	kps := []Keypoint{
		{X: 1, Y: 1},
		{X: 5.4, Y: 5.4},
		{X: 9.6, Y: 2},
	}
	got := FilterInside(kps, image.Rect(0, 0, 10, 10))
	if len(got) != 2 {
		t.Fatalf("got %d keypoints, want 2", len(got))
	}
	if got[1].X != 5.4 {
		t.Errorf("second keypoint X: got %g, want 5.4", got[1].X)
	}
}
