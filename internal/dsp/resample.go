// Package dsp implements the sample-rate conversion used by the audio
// assembly stage: a Kaiser-windowed sinc filter comparable to a
// "kaiser_best" resampler.
package dsp

import "math"

const (
	// zeroCrossings is the one-sided filter width in zero crossings of the
	// sinc kernel at the cutoff frequency.
	zeroCrossings = 32
	// kaiserBeta trades main-lobe width against stopband attenuation.
	kaiserBeta = 12.0
)

// Resample converts in from srcRate to dstRate. The output length is
// ceil(len(in) * dstRate / srcRate). When downsampling, the kernel cutoff is
// lowered to the destination Nyquist to suppress aliasing. Weights are
// normalized per output sample, so a DC signal passes through unchanged.
func Resample(in []float64, srcRate, dstRate int) []float64 {
	if len(in) == 0 {
		return nil
	}
	if srcRate == dstRate {
		out := make([]float64, len(in))
		copy(out, in)
		return out
	}

	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(math.Ceil(float64(len(in)) * ratio))

	cutoff := 1.0
	if ratio < 1 {
		cutoff = ratio
	}
	support := float64(zeroCrossings) / cutoff
	i0Beta := besselI0(kaiserBeta)

	out := make([]float64, outLen)
	for j := range out {
		pos := float64(j) / ratio

		lo := int(math.Ceil(pos - support))
		if lo < 0 {
			lo = 0
		}
		hi := int(math.Floor(pos + support))
		if hi > len(in)-1 {
			hi = len(in) - 1
		}

		var acc, wsum float64
		for i := lo; i <= hi; i++ {
			x := (pos - float64(i)) * cutoff
			w := sinc(x) * kaiserWindow(x/float64(zeroCrossings), i0Beta)
			acc += in[i] * w
			wsum += w
		}
		if wsum != 0 {
			out[j] = acc / wsum
		}
	}

	return out
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// kaiserWindow evaluates the Kaiser window at t in [-1, 1].
func kaiserWindow(t, i0Beta float64) float64 {
	v := 1 - t*t
	if v < 0 {
		return 0
	}
	return besselI0(kaiserBeta*math.Sqrt(v)) / i0Beta
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// evaluated by its power series.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2
	for k := 1; k < 64; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < sum*1e-15 {
			break
		}
	}
	return sum
}
