package audio

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultLabels are the rhythm styles the quiz asks about.
var DefaultLabels = []string{"셔플 리듬", "보사노바", "마칭 드럼", "왈츠"}

// ErrInvalidModel is returned when a model artifact cannot be used.
var ErrInvalidModel = errors.New("invalid rhythm model")

// Classifier maps a feature vector to a rhythm label.
type Classifier interface {
	Classify(f Features) (string, error)
	Labels() []string
	Name() string
}

// Model is the on-disk nearest-centroid artifact.
type Model struct {
	Version string    `yaml:"version"`
	Scale   []float64 `yaml:"scale"`
	Classes []struct {
		Label    string    `yaml:"label"`
		Centroid []float64 `yaml:"centroid"`
	} `yaml:"classes"`
}

// CentroidClassifier picks the class whose centroid is nearest in scaled
// Euclidean distance.
type CentroidClassifier struct {
	version   string
	scale     []float64
	labels    []string
	centroids [][]float64
}

// LoadModel reads and validates a YAML model artifact.
func LoadModel(path string) (*CentroidClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rhythm model: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return NewCentroidClassifier(m)
}

// NewCentroidClassifier validates m and builds a classifier from it.
func NewCentroidClassifier(m Model) (*CentroidClassifier, error) {
	if len(m.Classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrInvalidModel)
	}
	scale := m.Scale
	if len(scale) == 0 {
		scale = make([]float64, FeatureCount)
		for i := range scale {
			scale[i] = 1
		}
	}
	if len(scale) != FeatureCount {
		return nil, fmt.Errorf("%w: scale has %d values, want %d", ErrInvalidModel, len(scale), FeatureCount)
	}
	for i, s := range scale {
		if s <= 0 {
			return nil, fmt.Errorf("%w: scale[%d] must be positive", ErrInvalidModel, i)
		}
	}

	c := &CentroidClassifier{version: m.Version, scale: scale}
	for _, class := range m.Classes {
		if class.Label == "" {
			return nil, fmt.Errorf("%w: class without label", ErrInvalidModel)
		}
		if len(class.Centroid) != FeatureCount {
			return nil, fmt.Errorf("%w: centroid for %q has %d values, want %d",
				ErrInvalidModel, class.Label, len(class.Centroid), FeatureCount)
		}
		c.labels = append(c.labels, class.Label)
		c.centroids = append(c.centroids, class.Centroid)
	}
	return c, nil
}

// Classify returns the nearest class label.
func (c *CentroidClassifier) Classify(f Features) (string, error) {
	v := f.Vector()
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("%w: non-finite feature", ErrInvalidModel)
		}
	}

	best := -1
	bestDist := math.Inf(1)
	for i, centroid := range c.centroids {
		d := 0.0
		for j := range v {
			diff := (v[j] - centroid[j]) / c.scale[j]
			d += diff * diff
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return c.labels[best], nil
}

// Labels returns the class labels in model order.
func (c *CentroidClassifier) Labels() []string { return c.labels }

// Name identifies the classifier in generation records.
func (c *CentroidClassifier) Name() string {
	if c.version == "" {
		return "centroid"
	}
	return "centroid-" + c.version
}

// RandomClassifier ignores the features and picks a label uniformly.
// Identical inputs may yield different labels.
type RandomClassifier struct {
	mu     sync.Mutex
	rng    *rand.Rand
	labels []string
}

// NewRandomClassifier builds a RandomClassifier. A nil rng seeds from the runtime.
func NewRandomClassifier(labels []string, rng *rand.Rand) *RandomClassifier {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomClassifier{rng: rng, labels: labels}
}

// Classify returns a uniformly random label.
func (c *RandomClassifier) Classify(Features) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.labels[c.rng.IntN(len(c.labels))], nil
}

// Labels returns the candidate labels.
func (c *RandomClassifier) Labels() []string { return c.labels }

// Name identifies the classifier in generation records.
func (c *RandomClassifier) Name() string { return "random" }
