package portal3d

import (
	"fmt"

	"go.uber.org/zap"
)

var _ Backend = (*HeadlessDevice)(nil)

// DeviceCall is one recorded call to a HeadlessDevice.
type DeviceCall struct {
	Op   string
	Args []any
}

func (call DeviceCall) String() string {
	return fmt.Sprintf("%s%v", call.Op, call.Args)
}

// DrawRecord captures the pipeline state a HeadlessDevice was in when a draw was issued.
type DrawRecord struct {
	Geometry    GeometryHandle
	Program     ProgramHandle
	StencilFunc CompareFunc
	StencilRef  StencilMask
	StencilMask uint8
	StencilPass StencilOp
	DepthWrite  bool
	PolygonMode PolygonMode
}

// HeadlessDevice is a Backend that draws nothing. It hands out handles, keeps the provisioned data so it can be
// inspected, and records every Device call. It is used for tests and for running a World without a window.
type HeadlessDevice struct {
	Calls []DeviceCall
	Draws []DrawRecord

	// Record turns call recording on; draws are always recorded.
	Record bool

	// FailPaths makes NewTexture and NewCubeTexture fail for the given paths.
	FailPaths map[string]bool

	geometries map[GeometryHandle]*MeshData
	textures   map[TextureHandle]string
	programs   map[ProgramHandle]ProgramDesc
	buffers    map[BufferHandle][]float32
	nextHandle uint32

	state DrawRecord
	log   *zap.Logger
}

// NewHeadlessDevice returns an empty HeadlessDevice.
func NewHeadlessDevice(log *zap.Logger) *HeadlessDevice {
	if log == nil {
		log = zap.NewNop()
	}
	return &HeadlessDevice{
		Record:     true,
		FailPaths:  map[string]bool{},
		geometries: map[GeometryHandle]*MeshData{},
		textures:   map[TextureHandle]string{},
		programs:   map[ProgramHandle]ProgramDesc{},
		buffers:    map[BufferHandle][]float32{},
		state:      DrawRecord{StencilFunc: CompareAlways, StencilMask: 0xFF, DepthWrite: true},
		log:        log,
	}
}

func (device *HeadlessDevice) handle() uint32 {
	device.nextHandle++
	return device.nextHandle
}

func (device *HeadlessDevice) record(op string, args ...any) {
	if device.Record {
		device.Calls = append(device.Calls, DeviceCall{Op: op, Args: args})
	}
}

// Reset forgets recorded calls and draws; provisioned resources are kept.
func (device *HeadlessDevice) Reset() {
	device.Calls = device.Calls[:0]
	device.Draws = device.Draws[:0]
}

// Ops returns the names of the recorded calls, in order.
func (device *HeadlessDevice) Ops() []string {
	ops := make([]string, 0, len(device.Calls))
	for _, call := range device.Calls {
		ops = append(ops, call.Op)
	}
	return ops
}

// Live returns the number of resources that have been provisioned and not released.
func (device *HeadlessDevice) Live() int {
	return len(device.geometries) + len(device.textures) + len(device.programs) + len(device.buffers)
}

// Geometry returns the mesh uploaded for a handle, or nil.
func (device *HeadlessDevice) Geometry(geometry GeometryHandle) *MeshData {
	return device.geometries[geometry]
}

// Program returns the description a program was created from.
func (device *HeadlessDevice) Program(program ProgramHandle) (ProgramDesc, bool) {
	desc, ok := device.programs[program]
	return desc, ok
}

// UniformBlock returns the contents of a uniform buffer.
func (device *HeadlessDevice) UniformBlock(buffer BufferHandle) []float32 {
	return device.buffers[buffer]
}

// Device

func (device *HeadlessDevice) Clear(mask ClearMask) {
	device.record("Clear", mask)
}

func (device *HeadlessDevice) SetClearColor(color Color) {
	device.record("SetClearColor", color)
}

func (device *HeadlessDevice) SetStencilFunc(fn CompareFunc, ref StencilMask, readMask uint8) {
	device.state.StencilFunc = fn
	device.state.StencilRef = ref
	device.record("SetStencilFunc", fn, ref, readMask)
}

func (device *HeadlessDevice) SetStencilMask(mask uint8) {
	device.state.StencilMask = mask
	device.record("SetStencilMask", mask)
}

func (device *HeadlessDevice) SetStencilOp(stencilFail, depthFail, depthPass StencilOp) {
	device.state.StencilPass = depthPass
	device.record("SetStencilOp", stencilFail, depthFail, depthPass)
}

func (device *HeadlessDevice) SetDepthWrite(enabled bool) {
	device.state.DepthWrite = enabled
	device.record("SetDepthWrite", enabled)
}

func (device *HeadlessDevice) SetPolygonMode(mode PolygonMode) {
	device.state.PolygonMode = mode
	device.record("SetPolygonMode", mode)
}

func (device *HeadlessDevice) UseProgram(program ProgramHandle) {
	device.state.Program = program
	device.record("UseProgram", program)
}

func (device *HeadlessDevice) SetUniform(program ProgramHandle, name string, value any) {
	device.record("SetUniform", program, name, value)
}

func (device *HeadlessDevice) UploadUniformBlock(buffer BufferHandle, offset, size int, data []float32) {
	block, ok := device.buffers[buffer]
	if !ok {
		device.log.Warn("upload to unknown uniform buffer", zap.Uint32("buffer", uint32(buffer)))
		return
	}
	start, count := offset/4, size/4
	if start+count > len(block) || count > len(data) {
		device.log.Warn("uniform block upload out of range",
			zap.Uint32("buffer", uint32(buffer)),
			zap.Int("offset", offset),
			zap.Int("size", size),
		)
		return
	}
	copy(block[start:start+count], data[:count])
	device.record("UploadUniformBlock", buffer, offset, size)
}

func (device *HeadlessDevice) BindUniformBlock(binding int, buffer BufferHandle) {
	device.record("BindUniformBlock", binding, buffer)
}

func (device *HeadlessDevice) BindTexture(slot int, texture TextureHandle) {
	device.record("BindTexture", slot, texture)
}

func (device *HeadlessDevice) DrawTriangles(geometry GeometryHandle) {
	if _, ok := device.geometries[geometry]; !ok {
		device.log.Warn("draw of unknown geometry", zap.Uint32("geometry", uint32(geometry)))
	}
	draw := device.state
	draw.Geometry = geometry
	device.Draws = append(device.Draws, draw)
	device.record("DrawTriangles", geometry)
}

// Resources

func (device *HeadlessDevice) NewGeometry(mesh *MeshData) (GeometryHandle, error) {
	if err := mesh.Validate(); err != nil {
		return NoGeometry, err
	}
	geometry := GeometryHandle(device.handle())
	device.geometries[geometry] = mesh
	return geometry, nil
}

func (device *HeadlessDevice) NewTexture(path string) (TextureHandle, error) {
	if device.FailPaths[path] {
		return NoTexture, fmt.Errorf("texture %s: unavailable", path)
	}
	texture := TextureHandle(device.handle())
	device.textures[texture] = path
	return texture, nil
}

func (device *HeadlessDevice) NewCubeTexture(faces [6]string) (TextureHandle, error) {
	for _, face := range faces {
		if device.FailPaths[face] {
			return NoTexture, fmt.Errorf("cube texture face %s: unavailable", face)
		}
	}
	texture := TextureHandle(device.handle())
	device.textures[texture] = faces[0]
	return texture, nil
}

func (device *HeadlessDevice) NewProgram(desc ProgramDesc) (ProgramHandle, error) {
	program := ProgramHandle(device.handle())
	device.programs[program] = desc
	return program, nil
}

func (device *HeadlessDevice) NewUniformBuffer(size int) (BufferHandle, error) {
	if size <= 0 || size%4 != 0 {
		return NoBuffer, fmt.Errorf("uniform buffer size %d must be a positive multiple of 4", size)
	}
	buffer := BufferHandle(device.handle())
	device.buffers[buffer] = make([]float32, size/4)
	return buffer, nil
}

func (device *HeadlessDevice) ReleaseGeometry(geometry GeometryHandle) {
	delete(device.geometries, geometry)
}

func (device *HeadlessDevice) ReleaseTexture(texture TextureHandle) {
	delete(device.textures, texture)
}

func (device *HeadlessDevice) ReleaseProgram(program ProgramHandle) {
	delete(device.programs, program)
}

func (device *HeadlessDevice) ReleaseBuffer(buffer BufferHandle) {
	delete(device.buffers, buffer)
}
