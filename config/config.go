package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-emd/algorithms/sift"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// SiftType names a sift variant
type SiftType string

const (
	SiftTypeSift                 SiftType = "sift"
	SiftTypeEnsembleSift         SiftType = "ensemble_sift"
	SiftTypeCompleteEnsembleSift SiftType = "complete_ensemble_sift"
	SiftTypeMaskSift             SiftType = "mask_sift"
)

// SiftTypes lists every supported variant
var SiftTypes = []SiftType{
	SiftTypeSift,
	SiftTypeEnsembleSift,
	SiftTypeCompleteEnsembleSift,
	SiftTypeMaskSift,
}

var (
	ErrUnknownSiftType = errors.New("unknown sift type")
	ErrMissingHeader   = errors.New("config has no sift_type header")
)

type header struct {
	SiftType SiftType `yaml:"sift_type"`
}

// SiftConfig pairs a sift variant with its options. Exactly one of Sift,
// Ensemble and Mask is set, matching SiftType.
type SiftConfig struct {
	SiftType SiftType

	Sift     *sift.Config
	Ensemble *sift.EnsembleConfig
	Mask     *sift.MaskConfig
}

// Overrides replaces individual options regardless of variant. Nil fields
// are left alone; options the variant lacks are ignored.
type Overrides struct {
	MaxIMFs *int
	Workers *int
	Seed    *uint64
}

// Default returns the default options for the named variant
func Default(name SiftType) (*SiftConfig, error) {
	c := &SiftConfig{SiftType: name}
	switch name {
	case SiftTypeSift:
		cfg := sift.DefaultConfig()
		c.Sift = &cfg
	case SiftTypeEnsembleSift, SiftTypeCompleteEnsembleSift:
		cfg := sift.DefaultEnsembleConfig()
		c.Ensemble = &cfg
	case SiftTypeMaskSift:
		cfg := sift.DefaultMaskConfig()
		c.Mask = &cfg
	default:
		return nil, fmt.Errorf("%w: %q, use one of %v", ErrUnknownSiftType, name, SiftTypes)
	}
	return c, nil
}

// Options returns the variant's option struct
func (c *SiftConfig) Options() any {
	switch {
	case c.Sift != nil:
		return c.Sift
	case c.Ensemble != nil:
		return c.Ensemble
	default:
		return c.Mask
	}
}

// Validate checks the variant and its options
func (c *SiftConfig) Validate() error {
	switch c.SiftType {
	case SiftTypeSift:
		if c.Sift == nil {
			return fmt.Errorf("%s config has no options", c.SiftType)
		}
		return c.Sift.Validate()
	case SiftTypeEnsembleSift, SiftTypeCompleteEnsembleSift:
		if c.Ensemble == nil {
			return fmt.Errorf("%s config has no options", c.SiftType)
		}
		return c.Ensemble.Validate()
	case SiftTypeMaskSift:
		if c.Mask == nil {
			return fmt.Errorf("%s config has no options", c.SiftType)
		}
		return c.Mask.Validate()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSiftType, c.SiftType)
	}
}

// Apply sets every non-nil override on the options
func (c *SiftConfig) Apply(o Overrides) {
	if o.MaxIMFs != nil {
		switch {
		case c.Sift != nil:
			c.Sift.MaxIMFs = *o.MaxIMFs
		case c.Ensemble != nil:
			c.Ensemble.MaxIMFs = *o.MaxIMFs
		case c.Mask != nil:
			c.Mask.MaxIMFs = *o.MaxIMFs
		}
	}
	if o.Workers != nil {
		switch {
		case c.Ensemble != nil:
			c.Ensemble.Workers = *o.Workers
		case c.Mask != nil:
			c.Mask.Workers = *o.Workers
		}
	}
	if o.Seed != nil && c.Ensemble != nil {
		seed := *o.Seed
		c.Ensemble.Seed = &seed
	}
}

// Decomposer builds the sift driver the config describes
func (c *SiftConfig) Decomposer(logger logging.Logger) (sift.Decomposer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.SiftType {
	case SiftTypeSift:
		return sift.NewSifter(*c.Sift).WithLogger(logger), nil
	case SiftTypeEnsembleSift:
		return sift.NewEnsembleSifter(*c.Ensemble).WithLogger(logger), nil
	case SiftTypeCompleteEnsembleSift:
		return sift.NewCompleteEnsembleSifter(*c.Ensemble).WithLogger(logger), nil
	default:
		return sift.NewMaskSifter(*c.Mask).WithLogger(logger), nil
	}
}

// Encode writes the config as two YAML documents: a sift_type header
// followed by the options
func (c *SiftConfig) Encode(w io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(header{SiftType: c.SiftType}); err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}
	if err := enc.Encode(c.Options()); err != nil {
		return fmt.Errorf("encoding %s options: %w", c.SiftType, err)
	}
	return enc.Close()
}

// ToYAML returns the two-document YAML text of the config
func (c *SiftConfig) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a config written by Encode. Options missing from the stream
// keep the variant's defaults. A single document is read as options for
// fallback, which must then be a known variant.
func Decode(r io.Reader, fallback SiftType) (*SiftConfig, error) {
	dec := yaml.NewDecoder(r)

	var docs []yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing sift config: %w", err)
		}
		docs = append(docs, doc)
	}

	var name SiftType
	var opts *yaml.Node
	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("parsing sift config: empty stream")
	case 1:
		if fallback == "" {
			return nil, ErrMissingHeader
		}
		name, opts = fallback, &docs[0]
	case 2:
		var h header
		if err := docs[0].Decode(&h); err != nil {
			return nil, fmt.Errorf("parsing sift config header: %w", err)
		}
		if h.SiftType == "" {
			return nil, ErrMissingHeader
		}
		name, opts = h.SiftType, &docs[1]
	default:
		return nil, fmt.Errorf("parsing sift config: expected 2 documents, got %d", len(docs))
	}

	c, err := Default(name)
	if err != nil {
		return nil, err
	}
	if err := opts.Decode(c.Options()); err != nil {
		return nil, fmt.Errorf("parsing %s options: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromYAML parses two-document YAML text
func FromYAML(data []byte) (*SiftConfig, error) {
	return Decode(bytes.NewReader(data), "")
}

// Save writes the config to path
func (c *SiftConfig) Save(path string) error {
	data, err := c.ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving sift config: %w", err)
	}
	logging.Debug("Saved sift config", logging.Fields{"sift_type": c.SiftType, "path": path})
	return nil
}

// Load reads a config written by Save
func Load(path string) (*SiftConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading sift config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f, "")
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	logging.Debug("Loaded sift config", logging.Fields{"sift_type": c.SiftType, "path": path})
	return c, nil
}
