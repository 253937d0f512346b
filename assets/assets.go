// Package assets embeds the built-in data tables.
package assets

import (
	_ "embed"

	"campfire/internal/config"
)

// TablesYAML is the default Item, Equip and Monster table document.
//
//go:embed tables.yaml
var TablesYAML []byte

// Tables parses the embedded table document.
func Tables() (*config.Tables, error) {
	return config.Parse(TablesYAML)
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (*config.Tables, error) {
	if path == "" {
		return Tables()
	}
	return config.LoadTables(path)
}
