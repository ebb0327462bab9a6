package portal3d

// Opaque handles to GPU-side resources. The zero value of each is reserved to mean "none".
type (
	GeometryHandle uint32
	TextureHandle  uint32
	ProgramHandle  uint32
	BufferHandle   uint32
)

const (
	NoGeometry GeometryHandle = 0
	NoTexture  TextureHandle  = 0
	NoProgram  ProgramHandle  = 0
	NoBuffer   BufferHandle   = 0
)

// ClearMask selects the buffers cleared by Device.Clear.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil
	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// CompareFunc is a stencil comparison function.
type CompareFunc uint8

const (
	CompareAlways CompareFunc = iota
	CompareNever
	CompareEqual
	CompareNotEqual
)

func (fn CompareFunc) String() string {
	switch fn {
	case CompareAlways:
		return "always"
	case CompareNever:
		return "never"
	case CompareEqual:
		return "equal"
	case CompareNotEqual:
		return "notequal"
	}
	return "unknown"
}

// StencilOp is the action taken on the stored stencil value.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
)

// PolygonMode selects filled or line rasterization.
type PolygonMode uint8

const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// ProgramKind tells a backend which built-in pipeline a program stands for, for backends that can't compile the
// source files themselves.
type ProgramKind uint8

const (
	ProgramStandard ProgramKind = iota // Textured, lit entity geometry
	ProgramSkybox                      // Cube-mapped, translation-free, no depth writes
	ProgramPortal                      // Flat colored portal quad / backing box
	ProgramDebug                       // Flat colored overlay lines
)

// ProgramDesc describes a shader program: its vertex and fragment sources and an optional noise texture.
type ProgramDesc struct {
	Name     string
	Kind     ProgramKind
	Vertex   string // Path to the vertex stage source; optional for backends with built-in pipelines
	Fragment string // Path to the fragment stage source; optional for backends with built-in pipelines
	Noise    string // Optional path to a noise texture bound with the program
}

// Texture slots used by the renderer.
const (
	SlotAlbedo  = 0
	SlotNormal  = 1
	SlotCubeMap = 2
	SlotNoise   = 3
)

// Uniform names the renderer sets on programs.
const (
	UniformModel     = "Model"
	UniformBaseColor = "BaseColor"
	UniformHasNormal = "HasNormalTexture"
	UniformTime      = "Time"
	UniformColor     = "Color"
)

// MatricesBinding is the uniform block binding point of the per-frame matrices block. The block holds the projection
// matrix at MatricesProjectionOffset and the view matrix at MatricesViewOffset (byte offsets, column-major float32).
const (
	MatricesBinding          = 0
	MatricesProjectionOffset = 0
	MatricesViewOffset       = 64
	MatricesBlockSize        = 128
)

// Device is the GPU draw layer: a stencil/depth state machine that draws previously provisioned geometry.
type Device interface {
	Clear(mask ClearMask)
	SetClearColor(color Color)
	SetStencilFunc(fn CompareFunc, ref StencilMask, readMask uint8)
	SetStencilMask(mask uint8)
	SetStencilOp(stencilFail, depthFail, depthPass StencilOp)
	SetDepthWrite(enabled bool)
	SetPolygonMode(mode PolygonMode)
	UseProgram(program ProgramHandle)
	SetUniform(program ProgramHandle, name string, value any)
	// UploadUniformBlock writes size bytes of data into the buffer at the byte offset given.
	UploadUniformBlock(buffer BufferHandle, offset, size int, data []float32)
	BindUniformBlock(binding int, buffer BufferHandle)
	BindTexture(slot int, texture TextureHandle)
	DrawTriangles(geometry GeometryHandle)
}

// Resources provisions and releases GPU-side resources. Everything acquired is released exactly once.
type Resources interface {
	NewGeometry(mesh *MeshData) (GeometryHandle, error)
	NewTexture(path string) (TextureHandle, error)
	NewCubeTexture(faces [6]string) (TextureHandle, error)
	NewProgram(desc ProgramDesc) (ProgramHandle, error)
	NewUniformBuffer(size int) (BufferHandle, error)
	ReleaseGeometry(geometry GeometryHandle)
	ReleaseTexture(texture TextureHandle)
	ReleaseProgram(program ProgramHandle)
	ReleaseBuffer(buffer BufferHandle)
}

// Backend is a complete rendering backend.
type Backend interface {
	Device
	Resources
}
