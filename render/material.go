package render

import (
	"reflect"

	"github.com/lumengine/lumen/gpu"
	"github.com/lumengine/lumen/rctx"
	"github.com/lumengine/lumen/rdg"
	"github.com/lumengine/lumen/technique"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// Material pairs a stable id with a face, the typed payload that
// selects the renderer responsible for drawing objects using it.
type Material struct {
	ID   uint64
	Name string

	// Face carries the face-specific shading inputs. Its dynamic type
	// keys the factory lookup.
	Face any
}

// NewMaterial allocates a material id from the resource context.
func NewMaterial(ctx *rctx.Context, name string, face any) *Material {
	return &Material{ID: ctx.AllocMaterialID(), Name: name, Face: face}
}

// FaceType returns the dynamic type of the material's face.
func (m *Material) FaceType() reflect.Type {
	return reflect.TypeOf(m.Face)
}

// SetupResource bundles what factories need while registering their
// passes on a graph builder.
type SetupResource struct {
	Techniques *technique.Set
	Context    *rctx.Context

	// Format of the present target the passes render into.
	Format wgpu.TextureFormat
	MSAA   uint32
}

// MaterialRendererFactory registers the passes that draw one material
// face type. materials holds every material of that face type seen
// during setup, in first-use order. Failures here are construction
// time and recoverable.
type MaterialRendererFactory interface {
	Setup(materials []*Material, g *gpu.Context, b *rdg.GraphBuilder, setup *SetupResource) error
}
