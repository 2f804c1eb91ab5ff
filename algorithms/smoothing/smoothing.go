package smoothing

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-tempo/algorithms/windowing"
)

// ErrInvalidKernel is returned when a smoothing request cannot be resolved
// into a usable convolution kernel.
var ErrInvalidKernel = errors.New("invalid smoothing kernel")

// Spec describes how the smoothing kernel is obtained: either a window of a
// given size is generated, or explicit weights are used directly. A spec
// that resolves to a nil kernel means no smoothing (identity).
type Spec interface {
	resolve() ([]float64, error)
}

// KernelSize generates a symmetric Hamming window of the given length as
// the smoothing kernel. Sizes <= 1 are a no-op.
type KernelSize int

func (s KernelSize) resolve() ([]float64, error) {
	if s <= 1 {
		return nil, nil
	}
	return windowing.NewHamming(int(s), true).GetCoefficients(), nil
}

// KernelWeights uses the given weights directly as the smoothing kernel.
// Fewer than 2 weights is a no-op.
type KernelWeights []float64

func (w KernelWeights) resolve() ([]float64, error) {
	if len(w) <= 1 {
		return nil, nil
	}
	kernel := make([]float64, len(w))
	copy(kernel, w)
	return kernel, nil
}

// Smooth smooths the signal by convolving it with the kernel described by
// spec. The output is always a fresh slice of the same length as the input.
// A spec resolving to no kernel (size or weight count <= 1) returns an
// unmodified copy; a nil spec fails with ErrInvalidKernel.
func Smooth(signal []float64, spec Spec) ([]float64, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: no kernel specification given", ErrInvalidKernel)
	}
	kernel, err := spec.resolve()
	if err != nil {
		return nil, err
	}
	if kernel == nil {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}
	return Convolve(signal, kernel), nil
}

// directThreshold is the signal*kernel cost above which the FFT-based
// convolution path is used instead of the direct one.
const directThreshold = 1 << 16

// Convolve computes the "same"-length linear convolution of signal with
// kernel: the output has len(signal) samples and the kernel is centered,
// with zero padding at the boundaries.
func Convolve(signal, kernel []float64) []float64 {
	if len(signal) == 0 || len(kernel) == 0 {
		return []float64{}
	}
	if len(signal)*len(kernel) > directThreshold {
		return convolveFFT(signal, kernel)
	}
	return convolveDirect(signal, kernel)
}

func convolveDirect(signal, kernel []float64) []float64 {
	n := len(signal)
	m := len(kernel)
	offset := (m - 1) / 2

	out := make([]float64, n)
	for i := range out {
		sum := 0.0
		for k := range kernel {
			j := i + offset - k
			if j >= 0 && j < n {
				sum += kernel[k] * signal[j]
			}
		}
		out[i] = sum
	}
	return out
}
