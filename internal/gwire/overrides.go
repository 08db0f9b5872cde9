package gwire

import (
	"gopkg.in/yaml.v3"

	"github.com/xelis-go/funxyvm/internal/gmodule"
)

// EntryOverrides is a YAML sidecar format that lets a host re-tag
// which chunk ids in an already-compiled Module are publicly callable,
// without touching the canonical binary layout — useful when the same
// bytecode is deployed behind different host configurations (a batch
// job exposing one entry, a server exposing several). Grounded on the
// teacher's yaml.v3 usage (internal/evaluator/builtins_yaml.go); the
// on-wire Module format itself stays the custom binary layout of
// wire.go, since that one is the cross-host interop contract spec.md
// §6 describes.
type EntryOverrides struct {
	Entries []uint16 `yaml:"entries"`
}

func DecodeEntryOverrides(data []byte) (EntryOverrides, error) {
	var out EntryOverrides
	if err := yaml.Unmarshal(data, &out); err != nil {
		return EntryOverrides{}, err
	}
	return out, nil
}

// Apply replaces m's entry set with the overrides' chunk ids.
func (o EntryOverrides) Apply(m *gmodule.Module) {
	for id := range m.Entries {
		delete(m.Entries, id)
	}
	for _, id := range o.Entries {
		m.MarkEntry(id)
	}
}
