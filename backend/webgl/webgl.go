// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package webgl provides the WebGL painter. Each block is mirrored by
// one vertex batch: members append interleaved position+color vertices
// in paint order, and the batch carries the gputypes descriptors a GPU
// framework needs to build the corresponding buffer and pipeline.
//
// The painter itself never submits GPU commands. A host application
// hands it a gpucontext.DeviceProvider (or just an upload callback) and
// receives the rebuilt batches once per frame.
package webgl

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/backend"
)

// Vertex layout: two position floats followed by four color floats.
const (
	floatsPerVertex = 6
	vertexStride    = floatsPerVertex * 4
)

// Batchable is the handle contract for the WebGL painter. A drawable
// handle delivered to it must append its triangle-list vertices, each
// vertex being x, y, r, g, b, a float32 values.
type Batchable interface {
	sg.DrawableHandle

	// AppendVertices appends the drawable's vertices to dst and returns
	// the extended slice. The vertex count must be a multiple of three.
	AppendVertices(dst []float32) []float32
}

// Batch is the GPU-ready form of one block.
type Batch struct {
	// BlockID ties the batch back to the engine's block.
	BlockID uint64

	// Vertices is the interleaved vertex data in paint order.
	Vertices []float32

	// VertexCount is len(Vertices) / 6.
	VertexCount uint32

	// Layout, Topology, and Usage describe how a GPU framework should
	// interpret and allocate the data.
	Layout   gputypes.VertexBufferLayout
	Topology gputypes.PrimitiveTopology
	Usage    gputypes.BufferUsage
}

type batchState struct {
	members []Batchable
	batch   Batch
	dirty   bool
}

// Painter assembles per-block vertex batches.
type Painter struct {
	provider gpucontext.DeviceProvider
	upload   func(*Batch)

	blocks map[uint64]*batchState
	inited bool
}

// Option configures a Painter.
type Option func(*Painter)

// WithDeviceProvider attaches the host GPU device. The painter only
// stores it; command submission stays with the host.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(w *Painter) { w.provider = p }
}

// WithUploadFunc installs a callback invoked with every rebuilt batch
// when Flush runs.
func WithUploadFunc(fn func(*Batch)) Option {
	return func(w *Painter) { w.upload = fn }
}

// New creates a WebGL painter.
func New(opts ...Option) *Painter {
	p := &Painter{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func init() {
	backend.Register(sg.KindWebGL, func() backend.Painter { return New() })
}

// Name returns the painter identifier.
func (p *Painter) Name() string { return "webgl" }

// Kind returns sg.KindWebGL.
func (p *Painter) Kind() sg.RendererKind { return sg.KindWebGL }

// Init initializes the painter.
func (p *Painter) Init() error {
	p.blocks = make(map[uint64]*batchState)
	p.inited = true
	return nil
}

// Close drops all batches.
func (p *Painter) Close() {
	p.blocks = nil
	p.inited = false
}

// Provider returns the attached device provider, or nil.
func (p *Painter) Provider() gpucontext.DeviceProvider { return p.provider }

// BlockCreated allocates the block's batch and copies its membership.
func (p *Painter) BlockCreated(b backend.Block) {
	s := &batchState{dirty: true}
	s.batch = Batch{
		BlockID:  b.ID(),
		Layout:   vertexLayout(),
		Topology: gputypes.PrimitiveTopologyTriangleList,
		Usage:    gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	}
	copyMembers(s, b)
	p.blocks[b.ID()] = s
}

// BlockRangeChanged re-copies the membership and marks the batch stale.
func (p *Painter) BlockRangeChanged(b backend.Block, _, _ backend.Range) {
	s, ok := p.blocks[b.ID()]
	if !ok {
		return
	}
	copyMembers(s, b)
	s.dirty = true
}

// BlockDisposed releases the block's batch.
func (p *Painter) BlockDisposed(b backend.Block) {
	delete(p.blocks, b.ID())
}

// DrawableDirty marks every batch holding the handle stale.
func (p *Painter) DrawableDirty(h sg.DrawableHandle, _ sg.DirtyFlags) {
	for _, s := range p.blocks {
		for _, m := range s.members {
			if sg.DrawableHandle(m) == h {
				s.dirty = true
				break
			}
		}
	}
}

func copyMembers(s *batchState, b backend.Block) {
	s.members = s.members[:0]
	b.Members(func(h sg.DrawableHandle) bool {
		if m, ok := h.(Batchable); ok {
			s.members = append(s.members, m)
		}
		return true
	})
}

func (s *batchState) rebuild() {
	s.batch.Vertices = s.batch.Vertices[:0]
	for _, m := range s.members {
		s.batch.Vertices = m.AppendVertices(s.batch.Vertices)
	}
	s.batch.VertexCount = uint32(len(s.batch.Vertices) / floatsPerVertex)
	s.dirty = false
}

// Batch returns the block's batch, rebuilding it first if stale.
// Returns nil for an unknown block.
func (p *Painter) Batch(blockID uint64) *Batch {
	s, ok := p.blocks[blockID]
	if !ok {
		return nil
	}
	if s.dirty {
		s.rebuild()
	}
	return &s.batch
}

// Flush rebuilds every stale batch and hands the rebuilt ones to the
// upload callback. Call once per frame after SyncAndStitch.
func (p *Painter) Flush() {
	for _, s := range p.blocks {
		if !s.dirty {
			continue
		}
		s.rebuild()
		if p.upload != nil {
			p.upload(&s.batch)
		}
	}
}

func vertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
		},
	}
}
