// Package render provides the seam between scene content and the
// render graph: materials carry a typed face value, frame sources
// group the visible objects by face type, layer and material run, and
// factories turn each face type into graph passes.
package render

import (
	"reflect"
)

// LayerID orders the scene layers. Lower layers render first.
type LayerID uint32

// IndirectObjects is one contiguous run of objects within a layer that
// share a material, referencing a slice of the layer's object list.
type IndirectObjects struct {
	Material *Material
	MatID    uint64
	Offset   int
	Count    int
}

// SourceLayer holds the sorted objects of one layer, grouped into
// contiguous material runs.
type SourceLayer struct {
	Layer     LayerID
	Objects   []uint64
	Materials []IndirectObjects
}

// ObjectsOf returns the object ids covered by one material run.
func (l *SourceLayer) ObjectsOf(run IndirectObjects) []uint64 {
	return l.Objects[run.Offset : run.Offset+run.Count]
}

// Source is the per-face-type slice of a frame, handed to the pass
// executor responsible for that face type.
type Source struct {
	layers     []SourceLayer
	layerIndex map[LayerID]int
}

// Layers returns the source's layers in render order.
func (s *Source) Layers() []SourceLayer {
	return s.layers
}

// Layer returns the layer with the given id.
func (s *Source) Layer(id LayerID) (*SourceLayer, bool) {
	idx, ok := s.layerIndex[id]
	if !ok {
		return nil, false
	}

	return &s.layers[idx], true
}

func (s *Source) add(layer LayerID, objectID uint64, material *Material) {
	if len(s.layers) > 0 {
		last := &s.layers[len(s.layers)-1]

		if last.Layer == layer {
			run := &last.Materials[len(last.Materials)-1]

			if run.MatID == material.ID {
				run.Count++
			} else {
				last.Materials = append(last.Materials, IndirectObjects{
					Material: material,
					MatID:    material.ID,
					Offset:   len(last.Objects),
					Count:    1,
				})
			}

			last.Objects = append(last.Objects, objectID)

			return
		}
	}

	s.layers = append(s.layers, SourceLayer{
		Layer:   layer,
		Objects: []uint64{objectID},
		Materials: []IndirectObjects{
			{Material: material, MatID: material.ID, Offset: 0, Count: 1},
		},
	})

	s.layerIndex[layer] = len(s.layers) - 1
}

// SourceSet is the per-frame render parameter passed opaquely through
// graph execution: one Source per material face type.
type SourceSet struct {
	sources map[reflect.Type]*Source
}

func NewSourceSet() *SourceSet {
	return &SourceSet{sources: map[reflect.Type]*Source{}}
}

// Add appends one object to the frame. Objects must be added in sorted
// render order; consecutive objects sharing a layer and material end
// up in the same run.
func (s *SourceSet) Add(layer LayerID, objectID uint64, material *Material) {
	face := material.FaceType()

	src, ok := s.sources[face]
	if !ok {
		src = &Source{layerIndex: map[LayerID]int{}}
		s.sources[face] = src
	}

	src.add(layer, objectID, material)
}

// PutRS installs a prebuilt source for face type F, replacing whatever
// Add accumulated for it.
func PutRS[F any](s *SourceSet, src *Source) {
	s.sources[reflect.TypeFor[F]()] = src
}

// TakeRS extracts the source for face type F from a pass parameter. It
// returns false when the parameter is not a SourceSet or the frame
// contains no objects of that face type, which executors treat as
// "nothing to draw".
func TakeRS[F any](parameter any) (*Source, bool) {
	set, ok := parameter.(*SourceSet)
	if !ok {
		return nil, false
	}

	src, ok := set.sources[reflect.TypeFor[F]()]

	return src, ok
}
