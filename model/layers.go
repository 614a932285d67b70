package model

import (
	"fmt"
	"strings"
)

// CustomLayersKey is the artifact metadata key listing the non-standard
// layer types the exported graph was built with, comma separated.
const CustomLayersKey = "custom_layers"

// Layer describes a custom layer type that a serialized graph refers to by
// name.
type Layer struct {
	Name   string
	Domain string
}

// Layers maps layer names, exactly as written by the exporter, to their
// registration.
type Layers map[string]Layer

// DefaultLayers holds the one custom layer the classifier needs: the
// TensorFlow Hub wrapper around the Xception feature extractor.
func DefaultLayers() Layers {
	return Layers{
		"KerasLayer": {Name: "KerasLayer", Domain: "tensorflow_hub"},
	}
}

// Resolve checks that every referenced name is registered.
func (l Layers) Resolve(names []string) error {
	for _, n := range names {
		if _, ok := l[n]; !ok {
			return fmt.Errorf("%w: %q", ErrUnregisteredLayer, n)
		}
	}
	return nil
}

func ParseLayerList(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
