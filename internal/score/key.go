package score

import (
	"math"
	"strings"
)

// Mode is major or minor.
type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

// Key is a tonic pitch class with a mode and its conventional spelling.
type Key struct {
	PitchClass int    `json:"pitch_class"`
	Tonic      string `json:"tonic"`
	Mode       Mode   `json:"mode"`
}

// Krumhansl-Kessler key profiles.
var (
	majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// Spellings by pitch class, following the usual key signatures.
var (
	majorTonics = [12]string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
	minorTonics = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B"}
)

// Tonics along the circle of fifths, index fifths+7.
var (
	majorByFifths = [15]string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
	minorByFifths = [15]string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}
)

var koreanSteps = map[byte]string{'C': "다", 'D': "라", 'E': "마", 'F': "바", 'G': "사", 'A': "가", 'B': "나"}

// NewKey builds a key from a pitch class using the default spelling.
func NewKey(pc int, mode Mode) Key {
	pc = ((pc % 12) + 12) % 12
	if mode == Minor {
		return Key{PitchClass: pc, Tonic: minorTonics[pc], Mode: Minor}
	}
	return Key{PitchClass: pc, Tonic: majorTonics[pc], Mode: Major}
}

// KeyFromSignature reads a MusicXML key signature. Anything but an explicit
// minor mode is treated as major. ok is false when fifths is out of range.
func KeyFromSignature(sig KeySignature) (Key, bool) {
	if sig.Fifths < -7 || sig.Fifths > 7 {
		return Key{}, false
	}
	idx := sig.Fifths + 7
	if sig.Mode == string(Minor) {
		tonic := minorByFifths[idx]
		return Key{PitchClass: tonicPitchClass(tonic), Tonic: tonic, Mode: Minor}, true
	}
	tonic := majorByFifths[idx]
	return Key{PitchClass: tonicPitchClass(tonic), Tonic: tonic, Mode: Major}, true
}

func tonicPitchClass(tonic string) int {
	pc := stepPitchClass[tonic[:1]]
	for _, acc := range tonic[1:] {
		switch acc {
		case '#':
			pc++
		case 'b':
			pc--
		}
	}
	return ((pc % 12) + 12) % 12
}

// EstimateKey correlates a duration-weighted pitch-class histogram against the
// major and minor profiles in all twelve transpositions.
func EstimateKey(notes []Note) (Key, float64) {
	var hist [12]float64
	for _, n := range notes {
		hist[n.PitchClass] += float64(n.Duration)
	}

	best := NewKey(0, Major)
	bestScore := math.Inf(-1)
	for tonic := 0; tonic < 12; tonic++ {
		for _, mode := range []Mode{Major, Minor} {
			profile := majorProfile
			if mode == Minor {
				profile = minorProfile
			}
			var rotated [12]float64
			for i := range rotated {
				rotated[i] = profile[((i-tonic)%12+12)%12]
			}
			if r := pearson(hist[:], rotated[:]); r > bestScore {
				bestScore = r
				best = NewKey(tonic, mode)
			}
		}
	}
	return best, bestScore
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n
	var num, dx, dy float64
	for i := range x {
		a, b := x[i]-mx, y[i]-my
		num += a * b
		dx += a * a
		dy += b * b
	}
	if dx == 0 || dy == 0 {
		return 0
	}
	return num / math.Sqrt(dx*dy)
}

// English renders the key as "F# minor".
func (k Key) English() string {
	return k.Tonic + " " + string(k.Mode)
}

// Korean renders the key with Korean pitch names, e.g. 올림바단조.
func (k Key) Korean() string {
	if k.Tonic == "" {
		return ""
	}
	var b strings.Builder
	switch {
	case strings.HasSuffix(k.Tonic, "#"):
		b.WriteString("올림")
	case strings.HasSuffix(k.Tonic, "b"):
		b.WriteString("내림")
	}
	b.WriteString(koreanSteps[k.Tonic[0]])
	if k.Mode == Minor {
		b.WriteString("단조")
	} else {
		b.WriteString("장조")
	}
	return b.String()
}

// Relative returns the relative major or minor.
func (k Key) Relative() Key {
	if k.Mode == Minor {
		return NewKey(k.PitchClass+3, Major)
	}
	return NewKey(k.PitchClass-3, Minor)
}

// Parallel returns the key on the same tonic in the other mode.
func (k Key) Parallel() Key {
	if k.Mode == Minor {
		return NewKey(k.PitchClass, Major)
	}
	return NewKey(k.PitchClass, Minor)
}

// Dominant returns the key a fifth above in the same mode.
func (k Key) Dominant() Key {
	return NewKey(k.PitchClass+7, k.Mode)
}
