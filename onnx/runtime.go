package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ErrNoLibrary = errors.New("onnx runtime shared library not found")

var (
	envOnce sync.Once
	envErr  error
)

// Init sets the shared library path and initializes the ONNX Runtime
// environment. It runs once per process; later calls return the first result.
func Init(override string) error {
	envOnce.Do(func() {
		path := LibPath(override)
		if path == "" {
			envErr = ErrNoLibrary
			return
		}
		slog.Info("Using ONNX Runtime library", slog.String("path", path))
		ort.SetSharedLibraryPath(path)
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
		}
	})
	return envErr
}

func Destroy() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// LibPath returns override when set, otherwise the first candidate library
// that exists for this OS. It returns "" when nothing is found.
func LibPath(override string) string {
	if override != "" {
		return override
	}
	for _, p := range candidates(runtime.GOOS) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func candidates(goos string) []string {
	switch goos {
	case "linux":
		return []string{
			filepath.Join("onnxlibs", "libonnxruntime.so"),
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
		}
	case "darwin":
		return []string{
			filepath.Join("onnxlibs", "libonnxruntime.dylib"),
			"/usr/local/lib/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	case "windows":
		return []string{filepath.Join("onnxlibs", "onnxruntime.dll"), "onnxruntime.dll"}
	default:
		return nil
	}
}
