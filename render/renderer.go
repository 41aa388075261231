package render

import (
	"fmt"
	"reflect"

	"github.com/lumengine/lumen/gpu"
	"github.com/lumengine/lumen/logx"
	"github.com/lumengine/lumen/rdg"
)

// Renderer owns the material renderer factories and drives graph
// setup: every material face type present in the frame gets its
// factory invoked once with all materials of that type.
type Renderer struct {
	factories map[reflect.Type]MaterialRendererFactory
}

func NewRenderer() *Renderer {
	return &Renderer{factories: map[reflect.Type]MaterialRendererFactory{}}
}

// RegisterFactory installs the factory handling face type F.
func RegisterFactory[F any](r *Renderer, factory MaterialRendererFactory) {
	face := reflect.TypeFor[F]()

	logx.L().Info("install material renderer factory", "face", face.String())

	r.factories[face] = factory
}

// Setup groups materials by face type, preserving first-use order, and
// lets each factory register its passes on the builder. Materials with
// no registered factory are skipped with an error log; they simply do
// not draw.
func (r *Renderer) Setup(materials []*Material, g *gpu.Context, b *rdg.GraphBuilder, setup *SetupResource) error {
	order := make([]reflect.Type, 0, len(r.factories))
	grouped := map[reflect.Type][]*Material{}

	for _, mat := range materials {
		face := mat.FaceType()

		if _, ok := grouped[face]; !ok {
			order = append(order, face)
		}

		grouped[face] = append(grouped[face], mat)
	}

	for _, face := range order {
		factory, ok := r.factories[face]
		if !ok {
			logx.L().Error("no renderer factory for material face, objects will not draw",
				"face", face.String())

			continue
		}

		if err := factory.Setup(grouped[face], g, b, setup); err != nil {
			return fmt.Errorf("setup material face %s: %w", face.String(), err)
		}
	}

	return nil
}
