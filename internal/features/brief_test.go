package features

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestBRIEF_Deterministic(t *testing.T) {
	img := createPatternGray(t, 64, 64)
	kps := []Keypoint{{X: 20, Y: 20}, {X: 32, Y: 40}, {X: 44, Y: 25}}

	first, err := NewExtractor(DescriptorBRIEF, DefaultBRIEFConfig())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	second, err := NewExtractor(DescriptorBRIEF, DefaultBRIEFConfig())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	k1, d1, err := first.Compute(img, kps)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	k2, d2, err := second.Compute(img, kps)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if len(k1) != 3 || d1.Rows() != 3 {
		t.Fatalf("got %d keypoints / %d rows, want 3", len(k1), d1.Rows())
	}
	if d1.Format() != FormatBinary || d1.Cols() != 32 {
		t.Errorf("got %s descriptors with %d cols, want binary/32", d1.Format(), d1.Cols())
	}
	if !reflect.DeepEqual(k1, k2) {
		t.Error("keypoints differ between runs")
	}
	for i := 0; i < d1.Rows(); i++ {
		if !reflect.DeepEqual(d1.BinaryRow(i), d2.BinaryRow(i)) {
			t.Errorf("row %d differs between extractors with the same seed", i)
		}
	}
}

func TestBRIEF_DropsBorderKeypoints(t *testing.T) {
	img := createPatternGray(t, 64, 64)
	kps := []Keypoint{{X: 3, Y: 3}, {X: 32, Y: 32}, {X: 60, Y: 32}}

	ext, err := NewExtractor(DescriptorBRIEF, DefaultBRIEFConfig())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	kept, desc, err := ext.Compute(img, kps)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(kept) != 1 || desc.Rows() != 1 {
		t.Fatalf("got %d keypoints / %d rows, want 1", len(kept), desc.Rows())
	}
	if kept[0].X != 32 {
		t.Errorf("kept keypoint X: got %g, want 32", kept[0].X)
	}
}

func TestBRIEF_EmptyKeepsWidth(t *testing.T) {
	img := createPatternGray(t, 20, 20)
	cfg := DefaultBRIEFConfig()
	cfg.Bytes = 16

	ext, err := NewExtractor(DescriptorBRIEF, cfg)
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	kept, desc, err := ext.Compute(img, []Keypoint{{X: 10, Y: 10}})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(kept) != 0 || desc.Rows() != 0 {
		t.Errorf("got %d keypoints / %d rows, want 0", len(kept), desc.Rows())
	}
	if desc.Cols() != 16 {
		t.Errorf("cols: got %d, want 16", desc.Cols())
	}
}

func TestBRIEF_SelfMatchIsExact(t *testing.T) {
	img := createPatternGray(t, 80, 80)
	kps, err := ExtractFAST(img, FASTConfig{Threshold: 30, NonMaxSuppression: true})
	if err != nil {
		t.Fatalf("ExtractFAST failed: %v", err)
	}

	ext, err := NewExtractor(DescriptorBRIEF, DefaultBRIEFConfig())
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	_, desc, err := ext.Compute(img, kps)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if desc.Rows() == 0 {
		t.Skip("no interior keypoints on pattern")
	}

	m, err := NewMatcher(MatchOptions{})
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	matches, err := m.Match(desc, desc)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(matches) != desc.Rows() {
		t.Fatalf("got %d matches, want %d", len(matches), desc.Rows())
	}
	for _, mt := range matches {
		if mt.Distance != 0 {
			t.Errorf("query %d: distance %g, want 0", mt.QueryIdx, mt.Distance)
		}
	}
}

func TestBRIEFConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*BRIEFConfig)
	}{
		{"bytes", func(c *BRIEFConfig) { c.Bytes = 20 }},
		{"half window", func(c *BRIEFConfig) { c.HalfWindow = 0 }},
		{"blur", func(c *BRIEFConfig) { c.BlurRadius = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBRIEFConfig()
			tt.modify(&cfg)
			if _, err := NewExtractor(DescriptorBRIEF, cfg); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("got %v, want ErrInvalidParameter", err)
			}
		})
	}
}
