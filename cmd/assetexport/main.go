// Package main is the entry point for the asset exporter.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/gameasset/internal/config"
	"github.com/Faultbox/gameasset/internal/logger"
	"github.com/Faultbox/gameasset/pkg/export"
	"github.com/Faultbox/gameasset/pkg/scene"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Export.ScenePath == "" {
		logger.Error("no scene document given, use -scene or a config file")
		os.Exit(1)
	}
	if cfg.Export.MeshPath == "" && cfg.Export.SkeletonPath == "" && !cfg.Preview.Enabled {
		logger.Error("nothing to do: no mesh, skeleton or preview output configured")
		os.Exit(1)
	}

	forward, err := export.ParseAxis(cfg.Export.ForwardAxis)
	if err != nil {
		logger.Error("bad forward axis", zap.Error(err))
		os.Exit(1)
	}
	up, err := export.ParseAxis(cfg.Export.UpAxis)
	if err != nil {
		logger.Error("bad up axis", zap.Error(err))
		os.Exit(1)
	}

	exp, err := export.New(export.Options{Forward: forward, Up: up}, logger.Log)
	if err != nil {
		logger.Error("axis configuration rejected", zap.Error(err))
		os.Exit(1)
	}

	sc, err := scene.LoadFile(cfg.Export.ScenePath)
	if err != nil {
		logger.Error("failed to load scene", zap.String("path", cfg.Export.ScenePath), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("scene loaded",
		zap.String("path", cfg.Export.ScenePath),
		zap.Int("objects", len(sc.Objects)))

	if cfg.Export.MeshPath != "" {
		if err := exp.ExportMesh(sc, cfg.Export.MeshPath); err != nil {
			logger.Error("mesh export failed", zap.Error(err))
			os.Exit(1)
		}
	}

	if cfg.Export.SkeletonPath != "" {
		if err := exp.ExportSkeleton(sc, cfg.Export.SkeletonPath); err != nil {
			logger.Error("skeleton export failed", zap.Error(err))
			os.Exit(1)
		}
	}

	if cfg.Preview.Enabled {
		if err := writePreview(exp, sc, cfg.Preview.GLTFPath); err != nil {
			logger.Error("preview export failed", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("export finished")
}

// writePreview rebuilds mesh and skeleton for the glTF preview. Missing
// parts of the scene are simply left out of the preview.
func writePreview(exp *export.Exporter, sc *scene.Scene, path string) error {
	mesh, err := exp.BuildMesh(sc)
	if err != nil {
		logger.Warn("preview has no mesh", zap.Error(err))
		mesh = nil
	}

	skel, err := exp.BuildSkeleton(sc)
	if err != nil {
		logger.Warn("preview has no skeleton", zap.Error(err))
		skel = nil
	}

	if mesh == nil && skel == nil {
		return fmt.Errorf("scene has neither mesh objects nor an armature")
	}
	return exp.WritePreview(mesh, skel, path)
}
