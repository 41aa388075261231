package gpu

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/webgpu/wgpu"
)

var samplerCache, _ = lru.NewWithEvict[wgpu.SamplerDescriptor, *wgpu.Sampler](16, samplerCacheOnEvict)

func samplerCacheOnEvict(_ wgpu.SamplerDescriptor, value *wgpu.Sampler) {
	value.Release()
}

// CachedSampler returns a sampler matching the description. The
// sampler may be cached, you must not call Release on it.
func CachedSampler(dev *wgpu.Device, desc wgpu.SamplerDescriptor) *wgpu.Sampler {
	if sampler, ok := samplerCache.Get(desc); ok {
		return sampler
	}

	sampler := dev.CreateSampler(&desc)
	samplerCache.Add(desc, sampler)

	return sampler
}
