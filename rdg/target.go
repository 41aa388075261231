package rdg

// AttachmentKind selects how a render target slot binds to a resource.
type AttachmentKind uint8

const (
	// AttachDefault binds the slot to the reserved present target
	// (color, resolve or depth depending on the slot).
	AttachDefault AttachmentKind = iota

	// AttachNone leaves the slot unbound.
	AttachNone

	// AttachResource binds the slot to an explicit resource ID.
	AttachResource
)

// Attachment names the resource a render target slot prefers.
type Attachment struct {
	Kind AttachmentKind
	ID   ResourceID
}

func DefaultAttachment() Attachment {
	return Attachment{Kind: AttachDefault}
}

func NoAttachment() Attachment {
	return Attachment{Kind: AttachNone}
}

func ResourceAttachment(id ResourceID) Attachment {
	return Attachment{Kind: AttachResource, ID: id}
}

// ColorTargetDescriptor declares one color attachment slot of a pass.
// Resolve is wired automatically during compile for default slots when
// multisampling is active; pass authors normally leave it at
// AttachNone.
type ColorTargetDescriptor struct {
	Prefer  Attachment
	Resolve Attachment
	Ops     ResourceOps
}

// DepthTargetDescriptor declares the depth/stencil attachment of a pass.
type DepthTargetDescriptor struct {
	Prefer     Attachment
	DepthOps   *ResourceOps
	StencilOps *ResourceOps
}

// RenderTargetDescriptor declares all attachments of one pass.
type RenderTargetDescriptor struct {
	Colors []ColorTargetDescriptor
	Depth  *DepthTargetDescriptor
}

// HasDefault reports whether any slot binds to the present target.
// The windowing layer uses this to know the graph must be rebuilt when
// the swapchain size or format changes.
func (d *RenderTargetDescriptor) HasDefault() bool {
	for _, c := range d.Colors {
		if c.Prefer.Kind == AttachDefault {
			return true
		}
	}

	if d.Depth != nil && d.Depth.Prefer.Kind == AttachDefault {
		return true
	}

	return false
}

// resolveID maps an attachment to the resource it binds, given the
// reserved ID its default refers to. ok is false for unbound slots.
func (a Attachment) resolveID(defaultID ResourceID) (ResourceID, bool) {
	switch a.Kind {
	case AttachDefault:
		return defaultID, true
	case AttachResource:
		return a.ID, true
	}

	return 0, false
}
