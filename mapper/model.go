package mapper

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/graphfit/errors"
)

// ParameterSpec is one parameter entry of a YAML model definition.
type ParameterSpec struct {
	Name  string  `yaml:"name"`
	Type  string  `yaml:"type"`
	Size  int     `yaml:"size"`
	Mean  float64 `yaml:"mean"`
	Sigma float64 `yaml:"sigma"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// ModelSpec is a declarative model definition:
//
//	parameters:
//	  - name: centre
//	    type: gaussian
//	    mean: 0
//	    sigma: 1
//	  - name: intensity
//	    type: log_uniform
//	    lower: 0.01
//	    upper: 100
//
// Parameter order in the file fixes the flat-vector layout.
type ModelSpec struct {
	Parameters []ParameterSpec `yaml:"parameters"`
}

// ParseModel decodes a YAML model definition into a ModelMapper.
func ParseModel(data []byte) (*ModelMapper, error) {
	var spec ModelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "parsing model definition")
	}
	if len(spec.Parameters) == 0 {
		return nil, errors.New("model definition declares no parameters")
	}

	m := NewModelMapper()
	seen := make(map[string]struct{}, len(spec.Parameters))
	for _, p := range spec.Parameters {
		if p.Name == "" {
			return nil, errors.New("model parameter without a name")
		}
		if _, dup := seen[p.Name]; dup {
			return nil, errors.Newf("duplicate model parameter %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		prior, err := priorForSpec(p)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", p.Name)
		}
		size := p.Size
		if size < 1 {
			size = 1
		}
		m.AddVariable(p.Name, prior, size)
	}
	return m, nil
}

// LoadModel reads and decodes a YAML model definition file.
func LoadModel(path string) (*ModelMapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading model definition %q", path)
	}
	return ParseModel(data)
}

func priorForSpec(p ParameterSpec) (Prior, error) {
	switch p.Type {
	case "gaussian", "normal":
		return NewGaussianPrior(p.Mean, p.Sigma)
	case "uniform":
		return NewUniformPrior(p.Lower, p.Upper)
	case "log_uniform", "log-uniform":
		return NewLogUniformPrior(p.Lower, p.Upper)
	case "":
		return nil, errors.New("missing prior type")
	default:
		return nil, errors.Newf("unknown prior type %q", p.Type)
	}
}
