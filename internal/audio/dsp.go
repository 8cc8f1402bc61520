package audio

import (
	"math"
	"math/cmplx"
)

// --- FFT ---

func nextPow2(n int) int {
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}

// fft is an in-place iterative radix-2 Cooley-Tukey transform. len(x) must be a power of two.
func fft(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	j := 0
	for i := 0; i < n-1; i++ {
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
		m := n >> 1
		for j >= m && m > 0 {
			j -= m
			m >>= 1
		}
		j += m
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := -2 * math.Pi / float64(size)
		wLen := complex(math.Cos(step), math.Sin(step))
		for i := 0; i < n; i += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				u := x[i+k]
				v := x[i+k+half] * w
				x[i+k] = u + v
				x[i+k+half] = u - v
				w *= wLen
			}
		}
	}
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// --- Onset ---

// onsetEnvelope returns the positive spectral flux per hop.
func onsetEnvelope(samples []float32, frameSize, hopSize int) []float64 {
	n := len(samples)
	numFrames := (n - frameSize) / hopSize
	if numFrames <= 0 {
		return nil
	}
	fftSize := nextPow2(frameSize)
	window := hannWindow(frameSize)
	onset := make([]float64, numFrames)
	prevMag := make([]float64, fftSize/2+1)
	mag := make([]float64, fftSize/2+1)
	frame := make([]complex128, fftSize)

	for i := 0; i < numFrames; i++ {
		start := i * hopSize
		for k := range frame {
			frame[k] = 0
		}
		for j := 0; j < frameSize && start+j < n; j++ {
			frame[j] = complex(float64(samples[start+j])*window[j], 0)
		}
		fft(frame)
		flux := 0.0
		for j := 0; j <= fftSize/2; j++ {
			mag[j] = cmplx.Abs(frame[j])
			if d := mag[j] - prevMag[j]; d > 0 {
				flux += d
			}
		}
		onset[i] = flux
		copy(prevMag, mag)
	}
	return onset
}

// autocorr returns the mean lagged product of x at lag.
func autocorr(x []float64, lag int) float64 {
	if lag < 0 || lag >= len(x) {
		return 0
	}
	sum := 0.0
	count := 0
	for i := 0; i+lag < len(x); i++ {
		sum += x[i] * x[i+lag]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// removeMean centres the envelope so autocorrelation reflects periodicity, not level.
func removeMean(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

// --- Tempo ---

const (
	minBPM     = 60.0
	maxBPM     = 200.0
	defaultBPM = 120.0
)

// estimateBeatLag searches the 60-200 BPM lag range, weighting toward 120 BPM
// to avoid octave errors. Returns the lag in hops.
func estimateBeatLag(onset []float64, sr, hopSize int) int {
	minLag := int(float64(sr) * 60 / (maxBPM * float64(hopSize)))
	maxLag := int(float64(sr) * 60 / (minBPM * float64(hopSize)))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if maxLag < minLag {
		return 0
	}

	bestLag := 0
	bestCorr := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		corr := autocorr(onset, lag)
		bpmApprox := 60.0 / (float64(lag) * float64(hopSize) / float64(sr))
		weight := math.Exp(-0.5 * math.Pow((bpmApprox-defaultBPM)/40.0, 2))
		weighted := corr * (0.8 + 0.2*weight)
		if weighted > bestCorr {
			bestCorr = weighted
			bestLag = lag
		}
	}
	return bestLag
}

func lagToBPM(lag, sr, hopSize int) float64 {
	if lag <= 0 {
		return defaultBPM
	}
	bpm := 60.0 / (float64(lag) * float64(hopSize) / float64(sr))
	for bpm > maxBPM {
		bpm /= 2
	}
	for bpm < minBPM {
		bpm *= 2
	}
	return math.Round(bpm*10) / 10
}

// --- Energy ---

func rmsFrames(samples []float32, frameSize, hopSize int) []float64 {
	n := len(samples)
	numFrames := (n - frameSize) / hopSize
	if numFrames <= 0 {
		return nil
	}
	rms := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * hopSize
		sum := 0.0
		for j := 0; j < frameSize; j++ {
			v := float64(samples[start+j])
			sum += v * v
		}
		rms[i] = math.Sqrt(sum / float64(frameSize))
	}
	return rms
}

func meanStd(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	variance := 0.0
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(x)))
}
