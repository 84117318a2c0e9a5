package features

import (
	"image"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// grayToDense copies an 8-bit grayscale image into a rows x cols matrix of
// intensities. It returns nil for an empty image.
func grayToDense(img *image.Gray) *mat.Dense {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	data := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x, v := range row {
			data[y*w+x] = float64(v)
		}
	}
	return mat.NewDense(h, w, data)
}

// sobelKernels returns the derivative and smoothing taps of an extended
// Sobel operator. The smoothing taps are binomial coefficients; the
// derivative taps are the binomial row of size-1 convolved with [-1, 1].
//
//	aperture 3: deriv [-1 0 1]          smooth [1 2 1]
//	aperture 5: deriv [-1 -2 0 2 1]     smooth [1 4 6 4 1]
//	aperture 7: deriv [-1 -4 -5 0 5 4 1] smooth [1 6 15 20 15 6 1]
func sobelKernels(aperture int) (deriv, smooth []float64, err error) {
	switch aperture {
	case 3, 5, 7:
	default:
		return nil, nil, errors.Wrapf(ErrInvalidParameter, "aperture size %d (want 3, 5 or 7)", aperture)
	}
	smooth = binomialRow(aperture)
	base := binomialRow(aperture - 1)
	deriv = make([]float64, aperture)
	for i := range base {
		deriv[i] -= base[i]
		deriv[i+1] += base[i]
	}
	return deriv, smooth, nil
}

// binomialRow returns the n binomial coefficients C(n-1, k).
func binomialRow(n int) []float64 {
	row := make([]float64, n)
	row[0] = 1
	for i := 1; i < n; i++ {
		for j := i; j > 0; j-- {
			row[j] += row[j-1]
		}
	}
	return row
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// without repeating the edge sample (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// correlateSeparable applies kx along rows and then ky along columns,
// with the kernel anchor at len/2 and reflect-101 borders.
func correlateSeparable(src *mat.Dense, kx, ky []float64) *mat.Dense {
	rows, cols := src.Dims()
	tmp := mat.NewDense(rows, cols, nil)
	ax := len(kx) / 2
	for y := 0; y < rows; y++ {
		in := src.RawRowView(y)
		out := tmp.RawRowView(y)
		for x := 0; x < cols; x++ {
			var sum float64
			for i, k := range kx {
				if k == 0 {
					continue
				}
				sum += k * in[reflect101(x+i-ax, cols)]
			}
			out[x] = sum
		}
	}

	dst := mat.NewDense(rows, cols, nil)
	ay := len(ky) / 2
	for y := 0; y < rows; y++ {
		out := dst.RawRowView(y)
		for i, k := range ky {
			if k == 0 {
				continue
			}
			in := tmp.RawRowView(reflect101(y+i-ay, rows))
			for x := 0; x < cols; x++ {
				out[x] += k * in[x]
			}
		}
	}
	return dst
}

// gradients returns the scaled x and y Sobel derivatives of src.
func gradients(src *mat.Dense, aperture int, scale float64) (dx, dy *mat.Dense, err error) {
	deriv, smooth, err := sobelKernels(aperture)
	if err != nil {
		return nil, nil, err
	}
	dx = correlateSeparable(src, deriv, smooth)
	dy = correlateSeparable(src, smooth, deriv)
	if scale != 1 {
		dx.Scale(scale, dx)
		dy.Scale(scale, dy)
	}
	return dx, dy, nil
}

// boxSum returns the unnormalized sum of src over a size x size window.
func boxSum(src *mat.Dense, size int) *mat.Dense {
	ones := make([]float64, size)
	for i := range ones {
		ones[i] = 1
	}
	return correlateSeparable(src, ones, ones)
}

// structureTensor returns the block sums of dx², dx·dy and dy² that make up
// the local gradient covariance matrix at every pixel.
func structureTensor(src *mat.Dense, blockSize, aperture int) (a, b, c *mat.Dense, err error) {
	if blockSize < 1 {
		return nil, nil, nil, errors.Wrapf(ErrInvalidParameter, "block size %d", blockSize)
	}
	scale := float64(int(1)<<uint(aperture-1)) * float64(blockSize)
	scale = 1 / (scale * 255)

	dx, dy, err := gradients(src, aperture, scale)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, cols := src.Dims()
	xx := mat.NewDense(rows, cols, nil)
	xy := mat.NewDense(rows, cols, nil)
	yy := mat.NewDense(rows, cols, nil)
	xx.MulElem(dx, dx)
	xy.MulElem(dx, dy)
	yy.MulElem(dy, dy)

	return boxSum(xx, blockSize), boxSum(xy, blockSize), boxSum(yy, blockSize), nil
}
