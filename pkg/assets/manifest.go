package assets

import (
	"encoding/json"
	"os"
	"sync"
)

// ManifestEntry describes one built module in the client manifest.
type ManifestEntry struct {
	// File is the emitted (fingerprinted) file name.
	File string `json:"file"`

	// Src is the source module path.
	Src string `json:"src,omitempty"`

	// IsEntry marks the module as a build entry point.
	IsEntry bool `json:"isEntry,omitempty"`

	// IsDynamicEntry marks the module as a dynamically imported entry.
	IsDynamicEntry bool `json:"isDynamicEntry,omitempty"`

	// Imports lists the source paths of statically imported modules.
	Imports []string `json:"imports,omitempty"`

	// CSS lists emitted stylesheets belonging to this module.
	CSS []string `json:"css,omitempty"`

	// Assets lists other emitted assets (images, fonts) of this module.
	Assets []string `json:"assets,omitempty"`
}

// Manifest maps source module paths to their built asset descriptors.
// It is safe for concurrent use.
type Manifest struct {
	entries map[string]ManifestEntry
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest.
// Use Load() to create a manifest from a JSON file.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]ManifestEntry),
	}
}

// Load reads a manifest.json file and returns a Manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries map[string]ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return &Manifest{entries: entries}, nil
}

// Lookup returns the entry for the given source path.
func (m *Manifest) Lookup(source string) (ManifestEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[source]
	return entry, ok
}

// Has returns true if the manifest contains the given source path.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[source]
	return ok
}

// Set adds or updates an entry in the manifest.
// This is primarily useful for testing or dynamic manifest building.
func (m *Manifest) Set(source string, entry ManifestEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]ManifestEntry)
	}
	m.entries[source] = entry
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
