package features

import (
	"image/color"
	"testing"
)

func TestExtractFAST_IsolatedPixel(t *testing.T) {
	tests := []struct {
		name      string
		typ       FASTType
		bg, spot  uint8
		wantScore float64
	}{
		{"bright 9_16", FAST916, 0, 255, 16 * 255},
		{"dark 9_16", FAST916, 255, 0, 16 * 255},
		{"bright 7_12", FAST712, 0, 255, 12 * 255},
		{"bright 5_8", FAST58, 0, 255, 8 * 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createUniformGray(t, 40, 40, tt.bg)
			img.SetGray(20, 20, color.Gray{Y: tt.spot})

			cfg := DefaultFASTConfig()
			cfg.Type = tt.typ
			kps, err := ExtractFAST(img, cfg)
			if err != nil {
				t.Fatalf("ExtractFAST failed: %v", err)
			}
			if len(kps) != 1 {
				t.Fatalf("got %d keypoints, want 1: %+v", len(kps), kps)
			}
			kp := kps[0]
			if kp.X != 20 || kp.Y != 20 {
				t.Errorf("position: got (%g,%g), want (20,20)", kp.X, kp.Y)
			}
			if kp.Response != tt.wantScore {
				t.Errorf("score: got %g, want %g", kp.Response, tt.wantScore)
			}
			if kp.Size != fastKeypointSize {
				t.Errorf("size: got %g, want %d", kp.Size, fastKeypointSize)
			}
		})
	}
}

func TestExtractFAST_Uniform(t *testing.T) {
	kps, err := ExtractFAST(createUniformGray(t, 30, 30, 128), DefaultFASTConfig())
	if err != nil {
		t.Fatalf("ExtractFAST failed: %v", err)
	}
	if len(kps) != 0 {
		t.Errorf("got %d keypoints, want 0", len(kps))
	}
}

func TestExtractFAST_NonMaxSuppressionReduces(t *testing.T) {
	img := createPatternGray(t, 64, 64)
	cfg := DefaultFASTConfig()
	cfg.Threshold = 30

	cfg.NonMaxSuppression = false
	all, err := ExtractFAST(img, cfg)
	if err != nil {
		t.Fatalf("ExtractFAST failed: %v", err)
	}
	cfg.NonMaxSuppression = true
	suppressed, err := ExtractFAST(img, cfg)
	if err != nil {
		t.Fatalf("ExtractFAST failed: %v", err)
	}
	if len(suppressed) > len(all) {
		t.Errorf("suppression added keypoints: %d > %d", len(suppressed), len(all))
	}
}

func TestSegmentSign(t *testing.T) {
	tests := []struct {
		name   string
		states []int
		n      int
		want   int
	}{
		{"wraparound run", []int{1, 1, 1, 0, 0, 0, 1, 1}, 5, 1},
		{"dark run", []int{-1, -1, -1, -1, -1, 0, 0, 0}, 5, -1},
		{"too short", []int{1, 1, 1, 1, 0, 1, 1, 0}, 5, 0},
		{"mixed", []int{1, -1, 1, -1, 1, -1, 1, -1}, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentSign(tt.states, tt.n); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFASTType_Text(t *testing.T) {
	var typ FASTType
	if err := typ.UnmarshalText([]byte("7_12")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if typ != FAST712 {
		t.Errorf("got %v, want 7_12", typ)
	}
	if err := typ.UnmarshalText([]byte("3_4")); err == nil {
		t.Error("expected error for unknown type")
	}
}
