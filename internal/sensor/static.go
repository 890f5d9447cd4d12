package sensor

import "context"

// StaticChip is an in-memory Chip. A non-nil NameErr makes Name fail.
type StaticChip struct {
	ChipName string
	NameErr  error
	Feats    []Feature
}

func (c *StaticChip) Name() (string, error) {
	if c.NameErr != nil {
		return "", c.NameErr
	}
	return c.ChipName, nil
}

func (c *StaticChip) Features() []Feature { return c.Feats }

// StaticFeature is an in-memory Feature. An empty FeatureLabel makes Label
// fail with ErrLabelUnavailable.
type StaticFeature struct {
	FeatureLabel string
	Subs         []Subfeature
}

func (f *StaticFeature) Label() (string, error) {
	if f.FeatureLabel == "" {
		return "", ErrLabelUnavailable
	}
	return f.FeatureLabel, nil
}

func (f *StaticFeature) Subfeatures() []Subfeature { return f.Subs }

// StaticSubfeature is an in-memory Subfeature. A non-nil Err makes Value fail.
type StaticSubfeature struct {
	Kind SubfeatureType
	Val  float64
	Err  error
}

func (s StaticSubfeature) Type() SubfeatureType { return s.Kind }

func (s StaticSubfeature) Value() (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Val, nil
}

// TempFeature builds a labelled feature with a temperature input and,
// when non-zero, high and critical thresholds.
func TempFeature(label string, temp, high, crit float64) *StaticFeature {
	f := &StaticFeature{
		FeatureLabel: label,
		Subs:         []Subfeature{StaticSubfeature{Kind: TempInput, Val: temp}},
	}
	if high > 0 {
		f.Subs = append(f.Subs, StaticSubfeature{Kind: TempMax, Val: high})
	}
	if crit > 0 {
		f.Subs = append(f.Subs, StaticSubfeature{Kind: TempCrit, Val: crit})
	}
	return f
}

// StaticSource serves a fixed snapshot and counts Close calls.
type StaticSource struct {
	Snapshot []Chip
	Err      error
	Closed   int
}

func (s *StaticSource) Chips(ctx context.Context) ([]Chip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Snapshot, nil
}

func (s *StaticSource) Close() error {
	s.Closed++
	return nil
}
