// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the scene input, output targets and axis convention.
type ExportConfig struct {
	ScenePath    string `yaml:"scene_path"`    // YAML scene document
	MeshPath     string `yaml:"mesh_path"`     // mesh binary; empty skips the mesh export
	SkeletonPath string `yaml:"skeleton_path"` // skeleton binary; empty skips the skeleton export
	ForwardAxis  string `yaml:"forward_axis"`  // engine forward: X, -X, Y, -Y, Z, -Z
	UpAxis       string `yaml:"up_axis"`       // engine up, same notation
}

// PreviewConfig holds the optional glTF preview output.
type PreviewConfig struct {
	Enabled  bool   `yaml:"enabled"`
	GLTFPath string `yaml:"gltf_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values. The default axis
// pair equals the authoring convention, so the remap is the identity.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			ForwardAxis: "-Y",
			UpAxis:      "Z",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
