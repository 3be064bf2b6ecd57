// Package mappings holds the static tables that translate identifiers between Bedrock and Java: block
// states, items, entity types, sounds and biomes. The tables are loaded once at startup and resolved into
// a read-only Set per pair of protocol versions, which is shared by all sessions speaking that pair.
package mappings

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
)

//go:embed data/*.json
var embedded embed.FS

type blockEntry struct {
	Java     int32      `json:"java"`
	Bedrock  BlockState `json:"bedrock"`
	Versions []int32    `json:"versions,omitempty"`
}

type blockFile struct {
	Fallback string         `json:"fallback"`
	JavaBits map[string]int `json:"javaBits"`
	Blocks   []blockEntry   `json:"blocks"`
}

type itemEntry struct {
	Java    *int32 `json:"java,omitempty"`
	Bedrock string `json:"bedrock"`
	// Stack is the max stack size of the item. Zero means 64.
	Stack    int32   `json:"stack,omitempty"`
	Versions []int32 `json:"versions,omitempty"`
}

type itemFile struct {
	Fallback string      `json:"fallback"`
	Items    []itemEntry `json:"items"`
}

type entityFile struct {
	Registries  map[string][]string `json:"registries"`
	Bedrock     map[string]string   `json:"bedrock"`
	Unsupported []string            `json:"unsupported"`
}

type soundFile struct {
	Sounds map[string]string `json:"sounds"`
}

type biomeFile struct {
	Fallback string            `json:"fallback"`
	Biomes   map[string]uint32 `json:"biomes"`
}

// Data is the raw mapping data as loaded from disk.
type Data struct {
	blocks   blockFile
	items    itemFile
	entities entityFile
	sounds   soundFile
	biomes   biomeFile
}

// Load loads the mapping data. Files present in dir replace the built-in file of the same name; an empty
// dir loads the built-in data only.
func Load(dir string) (*Data, error) {
	d := &Data{}
	files := []struct {
		name string
		v    any
	}{
		{"blocks.json", &d.blocks},
		{"items.json", &d.items},
		{"entities.json", &d.entities},
		{"sounds.json", &d.sounds},
		{"biomes.json", &d.biomes},
	}
	for _, f := range files {
		b, err := readFile(dir, f.name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, f.v); err != nil {
			return nil, fmt.Errorf("decode %v: %w", f.name, err)
		}
	}
	return d, nil
}

func readFile(dir, name string) ([]byte, error) {
	if dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %v: %w", name, err)
		}
	}
	return embedded.ReadFile("data/" + name)
}

// JavaVersions returns the Java protocol versions that entity registries are present for.
func (d *Data) JavaVersions() []int32 {
	var versions []int32
	for k := range d.entities.Registries {
		v, err := strconv.ParseInt(k, 10, 32)
		if err == nil {
			versions = append(versions, int32(v))
		}
	}
	return versions
}

func includes(versions []int32, v int32) bool {
	return len(versions) == 0 || slices.Contains(versions, v)
}
