package model

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/krau/lesionscan/onnx"
	"github.com/krau/lesionscan/preprocess"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXLoader loads the classifier from an ONNX artifact into a pool of
// ONNX Runtime sessions.
type ONNXLoader struct {
	Path    string
	LibPath string
	// PoolSize is the number of sessions, i.e. the number of forward
	// passes that can run at once.
	PoolSize int
	Layers   Layers
	// OutputWidth is used when the artifact declares a dynamic class axis.
	OutputWidth int
}

func (l *ONNXLoader) Load(ctx context.Context) (Model, error) {
	m, err := l.load(ctx)
	if err != nil {
		return nil, &ModelLoadError{Path: l.Path, Err: err}
	}
	return m, nil
}

func (l *ONNXLoader) load(ctx context.Context) (*onnxModel, error) {
	if _, err := os.Stat(l.Path); err != nil {
		return nil, err
	}
	if err := onnx.Init(l.LibPath); err != nil {
		return nil, err
	}
	if err := l.checkLayers(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, ErrNoOutput
	}
	if err := checkInputShape(inputs[0].Dimensions); err != nil {
		return nil, err
	}
	width, err := outputWidth(outputs[0].Dimensions, l.OutputWidth)
	if err != nil {
		return nil, err
	}

	poolSize := max(1, l.PoolSize)
	m := &onnxModel{
		width: width,
		pool:  make(chan *session, poolSize),
	}
	for range poolSize {
		if err := ctx.Err(); err != nil {
			m.Close()
			return nil, err
		}
		s, err := newSession(l.Path, inputs[0].Name, outputs[0].Name, width)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.sessions = append(m.sessions, s)
		m.pool <- s
	}
	slog.Debug("ONNX sessions ready",
		slog.String("input", inputs[0].Name),
		slog.String("output", outputs[0].Name),
		slog.Int("sessions", poolSize))
	return m, nil
}

// checkLayers resolves the custom layers recorded in the artifact metadata
// against the registration table.
func (l *ONNXLoader) checkLayers() error {
	meta, err := ort.GetModelMetadata(l.Path)
	if err != nil {
		return fmt.Errorf("failed to read model metadata: %w", err)
	}
	defer meta.Destroy()

	value, ok, err := meta.LookupCustomMetadataMap(CustomLayersKey)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", CustomLayersKey, err)
	}
	if !ok {
		return nil
	}
	layers := l.Layers
	if layers == nil {
		layers = DefaultLayers()
	}
	return layers.Resolve(ParseLayerList(value))
}

func checkInputShape(dims ort.Shape) error {
	want := []int64{1, preprocess.ImageSize, preprocess.ImageSize, preprocess.Channels}
	if len(dims) != len(want) {
		return fmt.Errorf("%w: got %v, want %v", ErrInputShape, dims, want)
	}
	for i, d := range dims {
		if d > 0 && d != want[i] {
			return fmt.Errorf("%w: got %v, want %v", ErrInputShape, dims, want)
		}
	}
	return nil
}

func outputWidth(dims ort.Shape, fallback int) (int, error) {
	if len(dims) == 0 {
		return 0, ErrNoOutput
	}
	if w := dims[len(dims)-1]; w > 0 {
		return int(w), nil
	}
	if fallback > 0 {
		return fallback, nil
	}
	return 0, fmt.Errorf("%w: dynamic class axis %v and no configured width", ErrNoOutput, dims)
}

type session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newSession(path, inputName, outputName string, width int) (*session, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	size := preprocess.ImageSize * preprocess.ImageSize * preprocess.Channels
	inputTensor, err := ort.NewTensor(ort.NewShape(1, preprocess.ImageSize, preprocess.ImageSize, preprocess.Channels), make([]float32, size))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(width)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s, err := ort.NewAdvancedSession(
		path,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX Runtime session: %w", err)
	}
	return &session{session: s, input: inputTensor, output: outputTensor}, nil
}

func (s *session) destroy() {
	s.session.Destroy()
	s.input.Destroy()
	s.output.Destroy()
}

type onnxModel struct {
	width     int
	pool      chan *session
	sessions  []*session
	closeOnce sync.Once
}

func (m *onnxModel) OutputWidth() int {
	return m.width
}

func (m *onnxModel) Forward(t *preprocess.Tensor) ([]float32, error) {
	s := <-m.pool
	defer func() { m.pool <- s }()

	in := s.input.GetData()
	if len(t.Data) != len(in) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(t.Data), len(in))
	}
	copy(in, t.Data)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.output.GetData()
	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

func (m *onnxModel) Close() error {
	m.closeOnce.Do(func() {
		for _, s := range m.sessions {
			s.destroy()
		}
	})
	return nil
}
