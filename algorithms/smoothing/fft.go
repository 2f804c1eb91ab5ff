package smoothing

import (
	"github.com/mjibson/go-dsp/fft"
)

// convolveFFT computes the same "same"-length convolution as convolveDirect
// through the frequency domain. Both operands are zero padded to the next
// power of two covering the full convolution, multiplied bin-wise and
// transformed back.
func convolveFFT(signal, kernel []float64) []float64 {
	n := len(signal)
	m := len(kernel)
	full := n + m - 1
	size := nextPowerOfTwo(full)

	paddedSignal := make([]float64, size)
	copy(paddedSignal, signal)
	paddedKernel := make([]float64, size)
	copy(paddedKernel, kernel)

	specSignal := fft.FFTReal(paddedSignal)
	specKernel := fft.FFTReal(paddedKernel)

	product := make([]complex128, size)
	for i := range product {
		product[i] = specSignal[i] * specKernel[i]
	}

	result := fft.IFFT(product)

	// take the centered slice of the full convolution
	offset := (m - 1) / 2
	out := make([]float64, n)
	for i := range out {
		out[i] = real(result[i+offset])
	}
	return out
}

// nextPowerOfTwo finds the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
