// Package matcher implements the three-stage matching-and-scoring pipeline:
// exact text matching with an override table, LLM-backed semantic question
// matching, and LLM-backed answer-agreement scoring, plus assembly of the
// annotated combined table.
package matcher

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
)

// Overrides maps known question rewordings to a fixed reference key. Entries
// are checked by the exact matcher in addition to direct lookup and carry a
// match score of 1.
type Overrides map[string]string

// DefaultOverrides returns the built-in override table. The single entry was
// requested by the compliance team for a reworded classification question.
func DefaultOverrides() Overrides {
	return Overrides{
		"What is the most sensitive data classification that the third party will have access to for this engagement?": "Classification",
	}
}

// LoadOverrides reads an override table from a YAML file mapping question
// text to reference question text. Keys and values are normalized the same
// way loaded questions are.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "matcher: read overrides %s", path)
	}

	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "matcher: parse overrides %s", path)
	}

	out := make(Overrides, len(raw))
	for k, v := range raw {
		out[questionnaire.Normalize(k)] = questionnaire.Normalize(v)
	}
	return out, nil
}
