package parser

import (
	"embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed aliases.toml
var aliasFS embed.FS

type aliasFile struct {
	Master map[string]string `toml:"master"`
}

var masterAliases = mustLoadAliases()

func mustLoadAliases() map[string]string {
	data, err := aliasFS.ReadFile("aliases.toml")
	if err != nil {
		panic(fmt.Sprintf("aliases.toml missing from embed: %v", err))
	}
	var f aliasFile
	if err := toml.Unmarshal(data, &f); err != nil {
		panic(fmt.Sprintf("aliases.toml malformed: %v", err))
	}
	return f.Master
}

// CanonicalField resolves a header slug to its canonical master column:
// exact column names pass through, known synonyms go through the alias
// table, anything else reports no match.
func CanonicalField(slug string, fields []string) (string, bool) {
	for _, f := range fields {
		if slug == f {
			return f, true
		}
	}
	if target, ok := masterAliases[slug]; ok {
		return target, true
	}
	return "", false
}
