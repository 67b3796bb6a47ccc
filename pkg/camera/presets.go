package camera

import "sort"

// Presets returns the named resolution presets.
func Presets() map[string]Config {
	return map[string]Config{
		"vga":    VGAConfig(),
		"hd720":  HD720Config(),
		"hd1080": HD1080Config(),
	}
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// VGAConfig is 640x480, enough for the face mesh on slow machines.
func VGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// HD720Config is the default 1280x720.
func HD720Config() Config {
	return DefaultConfig()
}

// HD1080Config is 1920x1080.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	return cfg
}
