package audio

import (
	"errors"
	"math"
)

// FeatureCount is the length of Features.Vector.
const FeatureCount = 6

// minDurationSeconds is the shortest clip that yields a usable tempo estimate.
const minDurationSeconds = 2.0

// ErrTooShort is returned for clips shorter than two seconds.
var ErrTooShort = errors.New("audio clip too short for rhythm analysis")

// Features is the fixed-size rhythm descriptor fed to the classifier.
type Features struct {
	BPM          float64 `json:"bpm" yaml:"bpm"`
	Regularity   float64 `json:"regularity" yaml:"regularity"`
	TripleRatio  float64 `json:"triple_ratio" yaml:"triple_ratio"`
	SwingRatio   float64 `json:"swing_ratio" yaml:"swing_ratio"`
	RMSMean      float64 `json:"rms_mean" yaml:"rms_mean"`
	RMSVariation float64 `json:"rms_variation" yaml:"rms_variation"`
}

// Vector returns the features in model order.
func (f Features) Vector() []float64 {
	return []float64{f.BPM, f.Regularity, f.TripleRatio, f.SwingRatio, f.RMSMean, f.RMSVariation}
}

// Extract computes rhythm features from mono samples at sample rate sr.
func Extract(samples []float32, sr int) (Features, error) {
	if sr <= 0 || float64(len(samples)) < minDurationSeconds*float64(sr) {
		return Features{}, ErrTooShort
	}

	frameSize := 1024
	if sr > 32000 {
		frameSize = 2048
	}
	hopSize := frameSize / 2

	onset := onsetEnvelope(samples, frameSize, hopSize)
	centred := removeMean(onset)
	lag := estimateBeatLag(centred, sr, hopSize)

	f := Features{
		BPM:         lagToBPM(lag, sr, hopSize),
		TripleRatio: 0.5,
		SwingRatio:  0.5,
	}

	if lag > 0 {
		if zero := autocorr(centred, 0); zero > 0 {
			f.Regularity = clamp01(autocorr(centred, lag) / zero)
		}

		a3 := math.Max(autocorr(centred, 3*lag), 0)
		a4 := math.Max(autocorr(centred, 4*lag), 0)
		if a3+a4 > 0 {
			f.TripleRatio = a3 / (a3 + a4)
		}

		f.SwingRatio = swingRatio(onset, lag)
	}

	rms := rmsFrames(samples, frameSize, hopSize)
	mean, std := meanStd(rms)
	f.RMSMean = mean
	if mean > 1e-9 {
		f.RMSVariation = std / mean
	}

	return f, nil
}

// swingRatio folds the onset envelope over one beat period, anchored at the
// strongest early onset, and compares off-beat energy at 2/3 of the beat
// (swung eighth) against 1/2 (straight eighth).
func swingRatio(onset []float64, lag int) float64 {
	const bins = 12
	search := 4 * lag
	if search > len(onset) {
		search = len(onset)
	}
	anchor := 0
	for i := 1; i < search; i++ {
		if onset[i] > onset[anchor] {
			anchor = i
		}
	}

	var hist [bins]float64
	for i := anchor; i < len(onset); i++ {
		phase := float64((i-anchor)%lag) / float64(lag)
		hist[int(phase*bins)%bins] += onset[i]
	}

	straight := hist[6]
	swung := hist[8]
	if straight+swung <= 1e-12 {
		return 0.5
	}
	return swung / (straight + swung)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
