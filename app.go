package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/krau/lesionscan/catalog"
	"github.com/krau/lesionscan/config"
	"github.com/krau/lesionscan/inference"
	"github.com/krau/lesionscan/logging"
	"github.com/krau/lesionscan/model"
	"github.com/krau/lesionscan/onnx"
	"github.com/krau/lesionscan/preprocess"
)

type app struct {
	cfg      config.Config
	registry *model.Registry
	engine   *inference.Engine
}

func newApp(cfgPath string) (*app, error) {
	envErr := godotenv.Load()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		slog.Debug("No .env file loaded", slog.String("error", envErr.Error()))
	}

	cat := catalog.Lesions()
	loader := &model.ONNXLoader{
		Path:        cfg.ModelPath(),
		LibPath:     cfg.Libonnx,
		PoolSize:    cfg.PoolSize,
		Layers:      model.DefaultLayers(),
		OutputWidth: cat.Len(),
	}
	registry := model.NewRegistry(loader, cfg.ModelPath(), cfg.LoadTimeout())

	return &app{
		cfg:      cfg,
		registry: registry,
		engine:   inference.NewEngine(registry, cat),
	}, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == config.DefaultPath {
		return config.C()
	}
	return config.Load(path)
}

func (a *app) decodeOptions() preprocess.DecodeOptions {
	return preprocess.DecodeOptions{
		AllowedFormats: a.cfg.Formats(),
		AutoOrient:     a.cfg.AutoOrient,
		MaxBytes:       a.cfg.MaxUploadBytes,
		MaxPixels:      a.cfg.MaxPixels,
	}
}

func (a *app) close() {
	if err := a.registry.Close(); err != nil {
		slog.Error("Failed to release model", slog.String("error", err.Error()))
	}
	if err := onnx.Destroy(); err != nil {
		slog.Error("Failed to destroy ONNX Runtime environment", slog.String("error", err.Error()))
	}
}
