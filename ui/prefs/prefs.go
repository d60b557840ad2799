// Package prefs provides JSON-based application settings.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const settingsFile = "settings.json"

// KeyScale is the settings key holding the calibration scale.
const KeyScale = "scale_um_per_px"

// Prefs stores application settings as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads settings from ~/.config/micromeasure/settings.json. A missing
// or malformed file yields an empty store; lookups then fall back to their
// defaults, never an error.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "micromeasure", settingsFile))
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes settings to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Float returns a float64 setting, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 setting.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string setting, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetString stores a string setting.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Scale returns the persisted calibration scale in µm per pixel, or fallback
// when the value is missing or not positive.
func (p *Prefs) Scale(fallback float64) float64 {
	scale := p.Float(KeyScale, fallback)
	if scale <= 0 {
		return fallback
	}
	return scale
}

// SetScale stores the calibration scale. Together with Save this satisfies
// the measurement engine's ScaleStore.
func (p *Prefs) SetScale(umPerPx float64) {
	p.SetFloat(KeyScale, umPerPx)
}
