// Package ebitendevice renders portal3d worlds with ebiten.
//
// Ebiten draws 2D triangles, so the GPU state machine portal3d expects is emulated: vertices are transformed on the
// CPU, triangles are sorted back to front, depth is tested in a Kage shader against a depth image, and each stencil
// value is kept as its own coverage image. A draw first renders its depth into an intermediate image; the stencil test
// is then applied to that image with blending (DestinationIn to keep what's inside a mask, DestinationOut to remove
// it), stencil writes copy the surviving coverage into the mask images, and the color pass is drawn into its own image
// and cut down to the coverage before it's composited.
package ebitendevice

import (
	"fmt"
	"image/color"
	"os"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/solarlune/portal3d"
	"go.uber.org/zap"
)

// maxBatchTriangles is the most triangles drawn in one call; indices are uint16.
const maxBatchTriangles = 21845

// nearW is the smallest clip-space w a vertex may have; triangles with a vertex behind it are skipped.
const nearW = 1e-4

var lightDirection = mgl32.Vec3{0.4, 1, 0.3}.Normalize()

var _ portal3d.Backend = (*Device)(nil)

type texture struct {
	images [6]*ebiten.Image // Only the first is used for 2D textures
	cube   bool
}

type program struct {
	desc     portal3d.ProgramDesc
	shader   *ebiten.Shader // Custom fragment shader, if any
	noise    *ebiten.Image
	scaled   *ebiten.Image // Noise resized to the last texture drawn with the program
	uniforms map[string]any
}

type projectedVertex struct {
	x, y  float32
	depth float32 // 0 (near) to 1 (far)
	w     float32
}

type sortingTriangle struct {
	index int
	depth float32
}

// Device is a portal3d.Backend drawing to ebiten images. Render a frame between Begin and Present.
type Device struct {
	// DrawCalls and Triangles count the work done since Begin.
	DrawCalls int
	Triangles int

	width, height int

	colorTexture      *ebiten.Image
	depthTexture      *ebiten.Image
	depthIntermediate *ebiten.Image
	colorIntermediate *ebiten.Image
	lineTexture       *ebiten.Image
	unionTexture      *ebiten.Image
	stencils          map[portal3d.StencilMask]*ebiten.Image
	activeStencils    map[portal3d.StencilMask]bool
	white             *ebiten.Image

	depthShader *ebiten.Shader

	geometries map[portal3d.GeometryHandle]*portal3d.MeshData
	textures   map[portal3d.TextureHandle]*texture
	programs   map[portal3d.ProgramHandle]*program
	buffers    map[portal3d.BufferHandle][]float32
	nextHandle uint32

	clearColor       portal3d.Color
	stencilFunc      portal3d.CompareFunc
	stencilRef       portal3d.StencilMask
	stencilReadMask  uint8
	stencilWriteMask uint8
	stencilPass      portal3d.StencilOp
	depthWrite       bool
	polygonMode      portal3d.PolygonMode
	currentProgram   portal3d.ProgramHandle
	textureSlots     [4]portal3d.TextureHandle
	matrices         portal3d.BufferHandle

	projected     []projectedVertex
	sorting       []sortingTriangle
	depthVertices []ebiten.Vertex
	colorVertices []ebiten.Vertex
	indices       []uint16

	log *zap.Logger
}

// NewDevice creates a Device rendering at the given resolution.
func NewDevice(width, height int, log *zap.Logger) (*Device, error) {

	if log == nil {
		log = zap.NewNop()
	}

	device := &Device{
		stencils:        map[portal3d.StencilMask]*ebiten.Image{},
		activeStencils:  map[portal3d.StencilMask]bool{},
		geometries:      map[portal3d.GeometryHandle]*portal3d.MeshData{},
		textures:        map[portal3d.TextureHandle]*texture{},
		programs:        map[portal3d.ProgramHandle]*program{},
		buffers:         map[portal3d.BufferHandle][]float32{},
		stencilReadMask: 0xFF,
		depthWrite:      true,
		log:             log,
	}

	var err error

	if device.depthShader, err = ebiten.NewShader(depthShaderText); err != nil {
		return nil, fmt.Errorf("depth shader: %w", err)
	}

	device.white = ebiten.NewImage(4, 4)
	device.white.Fill(color.White)

	device.Resize(width, height)

	return device, nil

}

// Resize changes the rendering resolution. It does nothing if the size is unchanged.
func (device *Device) Resize(width, height int) {

	if width == device.width && height == device.height && device.colorTexture != nil {
		return
	}

	for _, img := range []*ebiten.Image{device.colorTexture, device.depthTexture, device.depthIntermediate, device.colorIntermediate, device.lineTexture, device.unionTexture} {
		if img != nil {
			img.Deallocate()
		}
	}
	for mask, img := range device.stencils {
		img.Deallocate()
		delete(device.stencils, mask)
	}
	clear(device.activeStencils)

	device.width, device.height = width, height
	device.colorTexture = ebiten.NewImage(width, height)
	device.depthTexture = ebiten.NewImage(width, height)
	device.depthIntermediate = ebiten.NewImage(width, height)
	device.colorIntermediate = ebiten.NewImage(width, height)
	device.lineTexture = ebiten.NewImage(width, height)
	device.unionTexture = ebiten.NewImage(width, height)

}

// Size returns the rendering resolution.
func (device *Device) Size() (width, height int) {
	return device.width, device.height
}

// Aspect returns the width / height ratio of the rendering resolution.
func (device *Device) Aspect() float32 {
	return float32(device.width) / float32(device.height)
}

// ColorTexture returns the image the frame is rendered into.
func (device *Device) ColorTexture() *ebiten.Image {
	return device.colorTexture
}

// Begin starts a frame.
func (device *Device) Begin() {
	device.DrawCalls = 0
	device.Triangles = 0
}

// Present draws the rendered frame onto the screen, stretched to fit.
func (device *Device) Present(screen *ebiten.Image) {
	opt := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if sw != device.width || sh != device.height {
		opt.GeoM.Scale(float64(sw)/float64(device.width), float64(sh)/float64(device.height))
	}
	screen.DrawImage(device.colorTexture, opt)
}

func (device *Device) handle() uint32 {
	device.nextHandle++
	return device.nextHandle
}

// Device state

func (device *Device) Clear(mask portal3d.ClearMask) {
	if mask&portal3d.ClearColor != 0 {
		device.colorTexture.Fill(device.clearColor)
	}
	if mask&portal3d.ClearDepth != 0 {
		device.depthTexture.Clear()
	}
	if mask&portal3d.ClearStencil != 0 {
		for value := range device.activeStencils {
			device.stencils[value].Clear()
		}
		clear(device.activeStencils)
	}
}

func (device *Device) SetClearColor(clearColor portal3d.Color) {
	device.clearColor = clearColor
}

func (device *Device) SetStencilFunc(fn portal3d.CompareFunc, ref portal3d.StencilMask, readMask uint8) {
	device.stencilFunc = fn
	device.stencilRef = ref
	device.stencilReadMask = readMask
}

func (device *Device) SetStencilMask(mask uint8) {
	device.stencilWriteMask = mask
}

func (device *Device) SetStencilOp(stencilFail, depthFail, depthPass portal3d.StencilOp) {
	// Fragments failing either test are discarded before the stencil is written, so only the pass op has an effect.
	device.stencilPass = depthPass
}

func (device *Device) SetDepthWrite(enabled bool) {
	device.depthWrite = enabled
}

func (device *Device) SetPolygonMode(mode portal3d.PolygonMode) {
	device.polygonMode = mode
}

func (device *Device) UseProgram(handle portal3d.ProgramHandle) {
	device.currentProgram = handle
}

func (device *Device) SetUniform(handle portal3d.ProgramHandle, name string, value any) {
	if prog, ok := device.programs[handle]; ok {
		prog.uniforms[name] = value
	}
}

func (device *Device) UploadUniformBlock(buffer portal3d.BufferHandle, offset, size int, data []float32) {
	block, ok := device.buffers[buffer]
	if !ok {
		device.log.Warn("upload to unknown uniform buffer", zap.Uint32("buffer", uint32(buffer)))
		return
	}
	start, count := offset/4, size/4
	if start+count > len(block) || count > len(data) {
		device.log.Warn("uniform block upload out of range", zap.Int("offset", offset), zap.Int("size", size))
		return
	}
	copy(block[start:start+count], data[:count])
}

func (device *Device) BindUniformBlock(binding int, buffer portal3d.BufferHandle) {
	if binding == portal3d.MatricesBinding {
		device.matrices = buffer
	}
}

func (device *Device) BindTexture(slot int, handle portal3d.TextureHandle) {
	if slot >= 0 && slot < len(device.textureSlots) {
		device.textureSlots[slot] = handle
	}
}

// Drawing

func (device *Device) DrawTriangles(handle portal3d.GeometryHandle) {

	mesh, ok := device.geometries[handle]
	if !ok {
		device.log.Warn("draw of unknown geometry", zap.Uint32("geometry", uint32(handle)))
		return
	}

	prog, ok := device.programs[device.currentProgram]
	if !ok {
		device.log.Warn("draw without a program", zap.Uint32("program", uint32(device.currentProgram)))
		return
	}

	if device.stencilFunc == portal3d.CompareNever {
		return
	}

	model := device.modelMatrix(prog)
	mvp := device.viewProjection(prog).Mul4(model)

	device.project(mesh, mvp)

	if device.polygonMode == portal3d.PolygonLine {
		device.drawLines(mesh, prog)
		return
	}

	device.sortTriangles(mesh)

	for start := 0; start < len(device.sorting); start += maxBatchTriangles {
		end := min(start+maxBatchTriangles, len(device.sorting))
		device.flush(mesh, prog, model, device.sorting[start:end])
	}

}

func (device *Device) modelMatrix(prog *program) mgl32.Mat4 {
	if model, ok := prog.uniforms[portal3d.UniformModel].(mgl32.Mat4); ok {
		return model
	}
	return mgl32.Ident4()
}

func (device *Device) viewProjection(prog *program) mgl32.Mat4 {

	projection, view := mgl32.Ident4(), mgl32.Ident4()

	if block := device.buffers[device.matrices]; len(block) >= portal3d.MatricesBlockSize/4 {
		p := portal3d.MatricesProjectionOffset / 4
		v := portal3d.MatricesViewOffset / 4
		copy(projection[:], block[p:p+16])
		copy(view[:], block[v:v+16])
	}

	// The skybox stays centered on the viewer.
	if prog.desc.Kind == portal3d.ProgramSkybox {
		view[12], view[13], view[14] = 0, 0, 0
	}

	return projection.Mul4(view)

}

// project transforms every vertex of the mesh to screen space.
func (device *Device) project(mesh *portal3d.MeshData, mvp mgl32.Mat4) {

	device.projected = device.projected[:0]

	width, height := float32(device.width), float32(device.height)

	for _, position := range mesh.Positions {

		clip := mvp.Mul4x1(position.Vec4(1))
		p := projectedVertex{w: clip[3]}

		if p.w > nearW {
			ndc := clip.Vec3().Mul(1 / p.w)
			p.x = (ndc[0]*0.5 + 0.5) * width
			p.y = (1 - (ndc[1]*0.5 + 0.5)) * height
			p.depth = mgl32.Clamp(ndc[2]*0.5+0.5, 0, 1)
		}

		device.projected = append(device.projected, p)

	}

}

func (device *Device) triangleVisible(mesh *portal3d.MeshData, tri int) bool {
	for k := 0; k < 3; k++ {
		if device.projected[mesh.Indices[tri*3+k]].w <= nearW {
			return false
		}
	}
	return true
}

// sortTriangles collects the mesh's visible triangles, farthest first, so nearer triangles in the same batch overwrite
// farther ones in the depth pass.
func (device *Device) sortTriangles(mesh *portal3d.MeshData) {

	device.sorting = device.sorting[:0]

	for tri := 0; tri < len(mesh.Indices)/3; tri++ {
		if !device.triangleVisible(mesh, tri) {
			continue
		}
		depth := float32(0)
		for k := 0; k < 3; k++ {
			depth += device.projected[mesh.Indices[tri*3+k]].w
		}
		device.sorting = append(device.sorting, sortingTriangle{index: tri, depth: depth})
	}

	slices.SortFunc(device.sorting, func(a, b sortingTriangle) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})

}

// sourceImage returns the image the color pass samples, depending on the program.
func (device *Device) sourceImage(prog *program, mesh *portal3d.MeshData) *ebiten.Image {

	switch prog.desc.Kind {

	case portal3d.ProgramSkybox:
		if tex, ok := device.textures[device.textureSlots[portal3d.SlotCubeMap]]; ok && tex.cube && mesh.CubeFace >= 0 && mesh.CubeFace < 6 {
			return tex.images[mesh.CubeFace]
		}

	case portal3d.ProgramStandard:
		if tex, ok := device.textures[device.textureSlots[portal3d.SlotAlbedo]]; ok {
			return tex.images[0]
		}

	}

	return device.white

}

// tint returns the vertex color the program draws the mesh with.
func (device *Device) tint(prog *program) portal3d.Color {

	switch prog.desc.Kind {

	case portal3d.ProgramStandard:
		if c, ok := prog.uniforms[portal3d.UniformBaseColor].([4]float32); ok && c[3] > 0 {
			return portal3d.NewColor(c[0], c[1], c[2], c[3])
		}

	case portal3d.ProgramPortal, portal3d.ProgramDebug:
		if c, ok := prog.uniforms[portal3d.UniformColor].([4]float32); ok {
			return portal3d.NewColor(c[0], c[1], c[2], c[3])
		}

	}

	return portal3d.NewColor(1, 1, 1, 1)

}

func (device *Device) shade(prog *program, mesh *portal3d.MeshData, model mgl32.Mat4, tri int) float32 {
	if prog.desc.Kind != portal3d.ProgramStandard || len(mesh.Normals) != len(mesh.Positions) {
		return 1
	}
	normal := model.Mat3().Mul3x1(mesh.Normals[mesh.Indices[tri*3]])
	if normal.Len() == 0 {
		return 1
	}
	return 0.55 + 0.45*max(0, normal.Normalize().Dot(lightDirection))
}

func (device *Device) flush(mesh *portal3d.MeshData, prog *program, model mgl32.Mat4, tris []sortingTriangle) {

	img := device.sourceImage(prog, mesh)
	tw, th := float32(img.Bounds().Dx()), float32(img.Bounds().Dy())
	tint := device.tint(prog)

	device.depthVertices = device.depthVertices[:0]
	device.colorVertices = device.colorVertices[:0]
	device.indices = device.indices[:0]

	for _, tri := range tris {

		lit := device.shade(prog, mesh, model, tri.index)
		vertexColor := tint.Multiply(portal3d.NewColor(lit, lit, lit, 1))

		for k := 0; k < 3; k++ {

			index := mesh.Indices[tri.index*3+k]
			p := device.projected[index]

			var uv mgl32.Vec2
			if int(index) < len(mesh.UVs) {
				uv = mesh.UVs[index]
			}

			device.depthVertices = append(device.depthVertices, ebiten.Vertex{
				DstX:   p.x,
				DstY:   p.y,
				SrcX:   p.x,
				SrcY:   p.y,
				ColorR: p.depth,
				ColorG: p.depth,
				ColorB: p.depth,
				ColorA: 1,
			})

			device.colorVertices = append(device.colorVertices, ebiten.Vertex{
				DstX:   p.x,
				DstY:   p.y,
				SrcX:   uv[0]*(tw-1) + 0.5,
				SrcY:   uv[1]*(th-1) + 0.5,
				ColorR: vertexColor.R,
				ColorG: vertexColor.G,
				ColorB: vertexColor.B,
				ColorA: vertexColor.A,
			})

			device.indices = append(device.indices, uint16(len(device.indices)))

		}

	}

	// Depth test into the intermediate image, which then serves as this draw's coverage.
	device.depthIntermediate.Clear()
	device.depthIntermediate.DrawTrianglesShader(device.depthVertices, device.indices, device.depthShader, &ebiten.DrawTrianglesShaderOptions{
		Images: [4]*ebiten.Image{device.depthTexture},
	})

	device.stencilTest(device.depthIntermediate)
	device.stencilWrite(device.depthIntermediate)

	if device.depthWrite {
		device.depthTexture.DrawImage(device.depthIntermediate, nil)
	}

	// Shader sources must all be the same size, so the color pass can't read the coverage directly; it's drawn on its
	// own and then cut down to the coverage.
	device.colorIntermediate.Clear()

	if prog.shader != nil {
		opt := &ebiten.DrawTrianglesShaderOptions{
			Images:   [4]*ebiten.Image{img, device.noiseFor(prog, img.Bounds().Dx(), img.Bounds().Dy())},
			Uniforms: map[string]any{},
		}
		if t, ok := prog.uniforms[portal3d.UniformTime].(float32); ok {
			opt.Uniforms[portal3d.UniformTime] = t
		}
		device.colorIntermediate.DrawTrianglesShader(device.colorVertices, device.indices, prog.shader, opt)
	} else {
		device.colorIntermediate.DrawTriangles(device.colorVertices, device.indices, img, nil)
	}

	device.colorIntermediate.DrawImage(device.depthIntermediate, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn})
	device.colorTexture.DrawImage(device.colorIntermediate, nil)

	device.DrawCalls++
	device.Triangles += len(tris)

}

// noiseFor returns the program's noise texture stretched to w x h. Without one of its own, the texture bound to the
// noise slot is used.
func (device *Device) noiseFor(prog *program, w, h int) *ebiten.Image {

	noise := prog.noise
	if noise == nil {
		tex, ok := device.textures[device.textureSlots[portal3d.SlotNoise]]
		if !ok {
			return nil
		}
		noise = tex.images[0]
	}

	if noise.Bounds().Dx() == w && noise.Bounds().Dy() == h {
		return noise
	}

	if prog.scaled == nil || prog.scaled.Bounds().Dx() != w || prog.scaled.Bounds().Dy() != h {
		if prog.scaled != nil {
			prog.scaled.Deallocate()
		}
		prog.scaled = ebiten.NewImage(w, h)
	}

	opt := &ebiten.DrawImageOptions{Blend: ebiten.BlendCopy}
	opt.GeoM.Scale(float64(w)/float64(noise.Bounds().Dx()), float64(h)/float64(noise.Bounds().Dy()))
	prog.scaled.DrawImage(noise, opt)

	return prog.scaled

}

// drawLines strokes the edges of the mesh's visible triangles with the program's color. Lines aren't depth tested.
func (device *Device) drawLines(mesh *portal3d.MeshData, prog *program) {

	device.lineTexture.Clear()

	tint := device.tint(prog)
	drawn := 0

	for tri := 0; tri < len(mesh.Indices)/3; tri++ {
		if !device.triangleVisible(mesh, tri) {
			continue
		}
		for k := 0; k < 3; k++ {
			a := device.projected[mesh.Indices[tri*3+k]]
			b := device.projected[mesh.Indices[tri*3+(k+1)%3]]
			vector.StrokeLine(device.lineTexture, a.x, a.y, b.x, b.y, 1, tint, true)
		}
		drawn++
	}

	if drawn == 0 {
		return
	}

	device.stencilTest(device.lineTexture)
	device.colorTexture.DrawImage(device.lineTexture, nil)

	device.DrawCalls++
	device.Triangles += drawn

}

// stencilTest removes the parts of coverage that fail the current stencil function.
func (device *Device) stencilTest(coverage *ebiten.Image) {

	ref := device.stencilRef & portal3d.StencilMask(device.stencilReadMask)

	keep := &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn}
	remove := &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationOut}

	switch device.stencilFunc {

	case portal3d.CompareEqual:
		if ref == 0 {
			for value := range device.activeStencils {
				coverage.DrawImage(device.stencils[value], remove)
			}
		} else if device.activeStencils[ref] {
			coverage.DrawImage(device.stencils[ref], keep)
		} else {
			coverage.Clear()
		}

	case portal3d.CompareNotEqual:
		if ref == 0 {
			device.unionTexture.Clear()
			for value := range device.activeStencils {
				device.unionTexture.DrawImage(device.stencils[value], nil)
			}
			coverage.DrawImage(device.unionTexture, keep)
		} else if device.activeStencils[ref] {
			coverage.DrawImage(device.stencils[ref], remove)
		}

	}

}

// stencilWrite applies the stencil pass operation to the covered pixels.
func (device *Device) stencilWrite(coverage *ebiten.Image) {

	if device.stencilWriteMask == 0 || device.stencilPass == portal3d.StencilKeep {
		return
	}

	value := device.stencilRef & portal3d.StencilMask(device.stencilWriteMask)
	if device.stencilPass == portal3d.StencilZero {
		value = 0
	}

	remove := &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationOut}

	for other := range device.activeStencils {
		if other != value {
			device.stencils[other].DrawImage(coverage, remove)
		}
	}

	if value == 0 {
		return
	}

	mask, ok := device.stencils[value]
	if !ok {
		mask = ebiten.NewImage(device.width, device.height)
		device.stencils[value] = mask
	}
	mask.DrawImage(coverage, nil)
	device.activeStencils[value] = true

}

// Resources

func (device *Device) NewGeometry(mesh *portal3d.MeshData) (portal3d.GeometryHandle, error) {
	if err := mesh.Validate(); err != nil {
		return portal3d.NoGeometry, err
	}
	handle := portal3d.GeometryHandle(device.handle())
	device.geometries[handle] = mesh
	return handle, nil
}

func (device *Device) NewTexture(path string) (portal3d.TextureHandle, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return portal3d.NoTexture, fmt.Errorf("load texture %s: %w", path, err)
	}
	handle := portal3d.TextureHandle(device.handle())
	device.textures[handle] = &texture{images: [6]*ebiten.Image{img}}
	return handle, nil
}

func (device *Device) NewCubeTexture(faces [6]string) (portal3d.TextureHandle, error) {
	tex := &texture{cube: true}
	for i, face := range faces {
		img, _, err := ebitenutil.NewImageFromFile(face)
		if err != nil {
			device.releaseImages(tex)
			return portal3d.NoTexture, fmt.Errorf("load cube face %s: %w", face, err)
		}
		tex.images[i] = img
	}
	handle := portal3d.TextureHandle(device.handle())
	device.textures[handle] = tex
	return handle, nil
}

// NewProgram creates a program. Vertex stages are ignored since vertices are transformed on the CPU. A fragment stage
// is a Kage shader given the texture in Images[0], the noise texture stretched to the same size in Images[1] and a
// float uniform named Time. Its output is clipped to the depth and stencil tests afterwards.
func (device *Device) NewProgram(desc portal3d.ProgramDesc) (portal3d.ProgramHandle, error) {

	prog := &program{desc: desc, uniforms: map[string]any{}}

	if desc.Fragment != "" {
		src, err := os.ReadFile(desc.Fragment)
		if err != nil {
			return portal3d.NoProgram, fmt.Errorf("program %s: %w", desc.Name, err)
		}
		if prog.shader, err = ebiten.NewShader(src); err != nil {
			return portal3d.NoProgram, fmt.Errorf("program %s: compile %s: %w", desc.Name, desc.Fragment, err)
		}
	}

	if desc.Noise != "" {
		noise, _, err := ebitenutil.NewImageFromFile(desc.Noise)
		if err != nil {
			if prog.shader != nil {
				prog.shader.Deallocate()
			}
			return portal3d.NoProgram, fmt.Errorf("program %s: noise texture: %w", desc.Name, err)
		}
		prog.noise = noise
	}

	handle := portal3d.ProgramHandle(device.handle())
	device.programs[handle] = prog

	device.log.Debug("program created", zap.String("name", desc.Name), zap.Bool("custom", prog.shader != nil))

	return handle, nil

}

func (device *Device) NewUniformBuffer(size int) (portal3d.BufferHandle, error) {
	if size <= 0 || size%4 != 0 {
		return portal3d.NoBuffer, fmt.Errorf("uniform buffer size %d must be a positive multiple of 4", size)
	}
	handle := portal3d.BufferHandle(device.handle())
	device.buffers[handle] = make([]float32, size/4)
	return handle, nil
}

func (device *Device) ReleaseGeometry(handle portal3d.GeometryHandle) {
	delete(device.geometries, handle)
}

func (device *Device) releaseImages(tex *texture) {
	for _, img := range tex.images {
		if img != nil {
			img.Deallocate()
		}
	}
}

func (device *Device) ReleaseTexture(handle portal3d.TextureHandle) {
	if tex, ok := device.textures[handle]; ok {
		device.releaseImages(tex)
		delete(device.textures, handle)
	}
}

func (device *Device) ReleaseProgram(handle portal3d.ProgramHandle) {
	if prog, ok := device.programs[handle]; ok {
		if prog.shader != nil {
			prog.shader.Deallocate()
		}
		for _, img := range []*ebiten.Image{prog.noise, prog.scaled} {
			if img != nil {
				img.Deallocate()
			}
		}
		delete(device.programs, handle)
	}
}

func (device *Device) ReleaseBuffer(handle portal3d.BufferHandle) {
	delete(device.buffers, handle)
}
