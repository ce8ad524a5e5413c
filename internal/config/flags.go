package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagScene    = flag.String("scene", "", "Path to scene document")
	flagMesh     = flag.String("mesh", "", "Mesh output path")
	flagSkeleton = flag.String("skeleton", "", "Skeleton+animations output path")
	flagForward  = flag.String("forward", "", "Engine forward axis (X, -X, Y, -Y, Z, -Z)")
	flagUp       = flag.String("up", "", "Engine up axis (X, -X, Y, -Y, Z, -Z)")
	flagGLTF     = flag.String("gltf", "", "Write a glTF preview to this path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Export.ScenePath = *flagScene
	}
	if *flagMesh != "" {
		cfg.Export.MeshPath = *flagMesh
	}
	if *flagSkeleton != "" {
		cfg.Export.SkeletonPath = *flagSkeleton
	}
	if *flagForward != "" {
		cfg.Export.ForwardAxis = *flagForward
	}
	if *flagUp != "" {
		cfg.Export.UpAxis = *flagUp
	}
	if *flagGLTF != "" {
		cfg.Preview.Enabled = true
		cfg.Preview.GLTFPath = *flagGLTF
	}
}
