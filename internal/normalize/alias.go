package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultAliases maps cleaned OCR misreadings to their canonical cleaned
// form. Keys and values are both normal forms (lowercase, no dosage tail).
var defaultAliases = map[string]string{
	"ev1on":       "evion",
	"evlon":       "evion",
	"cr0cin":      "crocin",
	"croc1n":      "crocin",
	"d0lo":        "dolo",
	"paracetam0l": "paracetamol",
	"az1thral":    "azithral",
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() map[string]string {
	out := make(map[string]string, len(defaultAliases))
	for k, v := range defaultAliases {
		out[k] = v
	}
	return out
}

// LoadAliases reads an alias table from a YAML file (a flat string map)
// and validates it.
func LoadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "normalize: read alias file")
	}

	var aliases map[string]string
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, eris.Wrap(err, "normalize: parse alias file")
	}

	if err := ValidateAliases(aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}

// ValidateAliases rejects tables that would break normalization
// idempotence: every value must be its own normal form, and no value may
// itself be rewritten by another alias entry.
func ValidateAliases(aliases map[string]string) error {
	for k, v := range aliases {
		if Clean(v) != v {
			return eris.Errorf("normalize: alias value %q for key %q is not a normal form", v, k)
		}
		if target, ok := aliases[v]; ok && target != v {
			return eris.Errorf("normalize: alias %q -> %q chains to %q", k, v, target)
		}
	}
	return nil
}
