package inference

import (
	"context"
	"image"

	"github.com/krau/lesionscan/catalog"
	"github.com/krau/lesionscan/model"
)

// Engine ties the model registry to the catalog. It keeps no state between
// calls.
type Engine struct {
	registry *model.Registry
	catalog  catalog.Catalog
}

func NewEngine(registry *model.Registry, cat catalog.Catalog) *Engine {
	return &Engine{registry: registry, catalog: cat}
}

func (e *Engine) Catalog() catalog.Catalog {
	return e.catalog
}

func (e *Engine) Status() model.Status {
	return e.registry.Status()
}

// Verify loads the model and checks that its output width matches the
// catalog. Run it once at startup.
func (e *Engine) Verify(ctx context.Context) error {
	m, err := e.registry.Get(ctx)
	if err != nil {
		return err
	}
	return e.catalog.CheckWidth(m.OutputWidth())
}

// Classify returns a *model.ModelLoadError without touching the image when
// the model is unavailable.
func (e *Engine) Classify(ctx context.Context, img image.Image) (*PredictionResult, error) {
	m, err := e.registry.Get(ctx)
	if err != nil {
		return nil, err
	}
	return Classify(m, e.catalog, img)
}
