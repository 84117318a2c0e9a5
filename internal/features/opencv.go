//go:build opencv

package features

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

const openCVAvailable = true

// feature2D is the part of the gocv algorithm wrappers used here.
type feature2D interface {
	Detect(src gocv.Mat) []gocv.KeyPoint
	Compute(src gocv.Mat, mask gocv.Mat, kps []gocv.KeyPoint) ([]gocv.KeyPoint, gocv.Mat)
	Close() error
}

// newFeature2D creates a fresh OpenCV algorithm with library defaults; for
// BRISK that is threshold 30, 3 octaves and pattern scale 1.
func newFeature2D(name string) (feature2D, error) {
	switch name {
	case "BRISK":
		a := gocv.NewBRISK()
		return &a, nil
	case "ORB":
		a := gocv.NewORB()
		return &a, nil
	case "AKAZE":
		a := gocv.NewAKAZE()
		return &a, nil
	case "SIFT":
		a := gocv.NewSIFT()
		return &a, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "opencv algorithm %q", name)
}

type openCVDetector struct {
	kind DetectorKind
}

func newOpenCVDetector(kind DetectorKind) (Detector, error) {
	return openCVDetector{kind: kind}, nil
}

func (d openCVDetector) Kind() DetectorKind { return d.kind }

func (d openCVDetector) Detect(img *image.Gray) ([]Keypoint, error) {
	if img == nil || img.Bounds().Empty() {
		return []Keypoint{}, nil
	}
	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, errors.Wrap(err, "convert image to mat")
	}
	defer src.Close()

	algo, err := newFeature2D(d.kind.String())
	if err != nil {
		return nil, err
	}
	defer algo.Close()

	return fromCVKeyPoints(algo.Detect(src)), nil
}

type openCVExtractor struct {
	kind DescriptorKind
}

func newOpenCVExtractor(kind DescriptorKind) (Extractor, error) {
	return openCVExtractor{kind: kind}, nil
}

func (e openCVExtractor) Kind() DescriptorKind { return e.kind }

func (e openCVExtractor) Compute(img *image.Gray, kps []Keypoint) ([]Keypoint, *Descriptors, error) {
	empty := func() *Descriptors {
		if e.kind.Format() == FormatFloat {
			return NewFloatDescriptors(nil, 0)
		}
		d, _ := NewBinaryDescriptors(nil)
		return d
	}
	if img == nil || img.Bounds().Empty() || len(kps) == 0 {
		return []Keypoint{}, empty(), nil
	}

	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, nil, errors.Wrap(err, "convert image to mat")
	}
	defer src.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	algo, err := newFeature2D(e.kind.String())
	if err != nil {
		return nil, nil, err
	}
	defer algo.Close()

	outKps, desc := algo.Compute(src, mask, toCVKeyPoints(kps))
	defer desc.Close()
	if desc.Empty() {
		return []Keypoint{}, empty(), nil
	}

	d, err := descriptorsFromMat(desc)
	if err != nil {
		return nil, nil, err
	}
	return fromCVKeyPoints(outKps), d, nil
}

func descriptorsFromMat(m gocv.Mat) (*Descriptors, error) {
	rows, cols := m.Rows(), m.Cols()
	switch m.Type() {
	case gocv.MatTypeCV8U:
		data, err := m.DataPtrUint8()
		if err != nil {
			return nil, errors.Wrap(err, "read binary descriptors")
		}
		out := make([][]byte, rows)
		for i := range out {
			out[i] = append([]byte(nil), data[i*cols:(i+1)*cols]...)
		}
		return NewBinaryDescriptors(out)
	case gocv.MatTypeCV32F:
		data, err := m.DataPtrFloat32()
		if err != nil {
			return nil, errors.Wrap(err, "read float descriptors")
		}
		vals := make([]float64, len(data))
		for i, v := range data {
			vals[i] = float64(v)
		}
		return NewFloatDescriptors(mat.NewDense(rows, cols, vals), cols), nil
	}
	return nil, errors.Wrapf(ErrDescriptorMismatch, "unexpected descriptor mat type %v", m.Type())
}

func toCVKeyPoints(kps []Keypoint) []gocv.KeyPoint {
	out := make([]gocv.KeyPoint, len(kps))
	for i, kp := range kps {
		out[i] = gocv.KeyPoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
			ClassID:  -1,
		}
	}
	return out
}

func fromCVKeyPoints(kps []gocv.KeyPoint) []Keypoint {
	out := make([]Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = Keypoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
		}
	}
	return out
}
