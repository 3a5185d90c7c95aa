package feedback

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidThresholds is wrapped by every threshold validation error.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds are the tier boundaries, each a percentage in [0,100]. A score
// below the incorrect boundary is incorrect, below the improve boundary needs
// improvement, otherwise it is acceptable.
type Thresholds struct {
	QualityIncorrect float64 `mapstructure:"quality_incorrect" json:"quality_incorrect"`
	QualityImprove   float64 `mapstructure:"quality_improve"   json:"quality_improve"`
	StressIncorrect  float64 `mapstructure:"stress_incorrect"  json:"stress_incorrect"`
	StressImprove    float64 `mapstructure:"stress_improve"    json:"stress_improve"`
}

// DefaultThresholds returns the default practice profile.
func DefaultThresholds() Thresholds {
	return Thresholds{
		QualityIncorrect: 60,
		QualityImprove:   80,
		StressIncorrect:  80,
		StressImprove:    90,
	}
}

var profiles = map[string]Thresholds{
	"default": DefaultThresholds(),
	"lenient": {QualityIncorrect: 40, QualityImprove: 60, StressIncorrect: 70, StressImprove: 80},
	"strict":  {QualityIncorrect: 70, QualityImprove: 85, StressIncorrect: 85, StressImprove: 90},
}

// Profile returns the built-in thresholds registered under name.
func Profile(name string) (Thresholds, error) {
	th, ok := profiles[name]
	if !ok {
		return Thresholds{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidThresholds, name)
	}
	return th, nil
}

// ProfileNames lists the built-in profiles in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the range and ordering of every boundary.
func (t Thresholds) Validate() error {
	bounds := []struct {
		name  string
		value float64
	}{
		{"quality_incorrect", t.QualityIncorrect},
		{"quality_improve", t.QualityImprove},
		{"stress_incorrect", t.StressIncorrect},
		{"stress_improve", t.StressImprove},
	}
	for _, b := range bounds {
		if math.IsNaN(b.value) || b.value < 0 || b.value > 100 {
			return fmt.Errorf("%w: %s must be within [0,100] (got %v)", ErrInvalidThresholds, b.name, b.value)
		}
	}

	if t.QualityIncorrect > t.QualityImprove {
		return fmt.Errorf("%w: quality_incorrect (%v) exceeds quality_improve (%v)",
			ErrInvalidThresholds, t.QualityIncorrect, t.QualityImprove)
	}
	if t.StressIncorrect > t.StressImprove {
		return fmt.Errorf("%w: stress_incorrect (%v) exceeds stress_improve (%v)",
			ErrInvalidThresholds, t.StressIncorrect, t.StressImprove)
	}
	return nil
}

// Profiles resolves profile names to thresholds. Custom profiles override
// built-in ones of the same name.
type Profiles struct {
	defaultName string
	custom      map[string]Thresholds
}

// NewProfiles validates every custom profile and checks that defaultName
// resolves. An empty defaultName selects "default".
func NewProfiles(defaultName string, custom map[string]Thresholds) (*Profiles, error) {
	if defaultName == "" {
		defaultName = "default"
	}

	p := &Profiles{defaultName: defaultName, custom: make(map[string]Thresholds, len(custom))}
	for name, th := range custom {
		if err := th.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		p.custom[name] = th
	}

	if _, err := p.Resolve(""); err != nil {
		return nil, err
	}
	return p, nil
}

// Resolve returns the thresholds of name, or of the default profile when
// name is empty.
func (p *Profiles) Resolve(name string) (Thresholds, error) {
	if name == "" {
		name = p.defaultName
	}
	if th, ok := p.custom[name]; ok {
		return th, nil
	}
	return Profile(name)
}

// Names lists built-in and custom profile names in sorted order
func (p *Profiles) Names() []string {
	seen := make(map[string]struct{})
	for _, name := range ProfileNames() {
		seen[name] = struct{}{}
	}
	for name := range p.custom {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
