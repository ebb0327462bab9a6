package portal3d

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// RendererOptions configures a Renderer.
type RendererOptions struct {
	Debug          bool    // Draw portal outlines over the frame
	RotationPeriod float32 // Seconds per full turn of FlagRotating entities
	WireframeColor Color
	DebugColor     Color
	// Program descriptions for the renderer's own programs. Kinds are filled in by NewRenderer.
	StandardProgram ProgramDesc
	SkyboxProgram   ProgramDesc
	PortalProgram   ProgramDesc
	DebugProgram    ProgramDesc
}

// DefaultRendererOptions returns sensible defaults.
func DefaultRendererOptions() RendererOptions {
	return RendererOptions{
		RotationPeriod:  6,
		WireframeColor:  NewColor(1, 1, 1, 1),
		DebugColor:      NewColor(1, 1, 0, 1),
		StandardProgram: ProgramDesc{Name: "standard"},
		SkyboxProgram:   ProgramDesc{Name: "skybox"},
		PortalProgram:   ProgramDesc{Name: "portal"},
		DebugProgram:    ProgramDesc{Name: "debug"},
	}
}

// FrameStats reports what a DrawFrame call did.
type FrameStats struct {
	Scene            SceneID // The Scene that was rendered
	NextScene        SceneID // The Scene the next frame renders
	EntitiesDrawn    int     // Entities drawn, counting every destination scene's entities
	PortalsDrawn     int     // Portal quads or backing boxes written to the stencil buffer
	DestinationDraws int     // Destination scenes drawn through their stencil mask
	DrawCalls        int
	Entered          bool // The viewer crossed a portal this frame
}

// Renderer draws a World through a Backend. It owns every GPU resource it creates (the shared portal geometry, its
// programs and the per-frame matrices block) and releases them in Close.
type Renderer struct {
	Debug bool

	backend  Backend
	options  RendererOptions
	matrices BufferHandle

	standardProgram ProgramHandle
	skyboxProgram   ProgramHandle
	portalProgram   ProgramHandle
	debugProgram    ProgramHandle
	extraPrograms   []ProgramHandle

	cube GeometryHandle
	quad GeometryHandle

	spin      *gween.Tween
	spinTime  float32 // Seconds into the current turn
	spinAngle float32
	elapsed   float32

	log *zap.Logger
}

// NewRenderer creates a Renderer, provisioning its programs, geometry and uniform block on the backend.
func NewRenderer(backend Backend, options RendererOptions, log *zap.Logger) (*Renderer, error) {

	if log == nil {
		log = zap.NewNop()
	}

	if options.RotationPeriod <= 0 {
		options.RotationPeriod = DefaultRendererOptions().RotationPeriod
	}

	renderer := &Renderer{
		Debug:   options.Debug,
		backend: backend,
		options: options,
		spin:    gween.New(0, 2*math32.Pi, options.RotationPeriod, ease.Linear),
		log:     log,
	}

	var err error

	if renderer.matrices, err = backend.NewUniformBuffer(MatricesBlockSize); err != nil {
		return nil, fmt.Errorf("matrices block: %w", err)
	}

	programs := []struct {
		handle *ProgramHandle
		desc   ProgramDesc
		kind   ProgramKind
	}{
		{&renderer.standardProgram, options.StandardProgram, ProgramStandard},
		{&renderer.skyboxProgram, options.SkyboxProgram, ProgramSkybox},
		{&renderer.portalProgram, options.PortalProgram, ProgramPortal},
		{&renderer.debugProgram, options.DebugProgram, ProgramDebug},
	}

	for _, p := range programs {
		p.desc.Kind = p.kind
		if *p.handle, err = backend.NewProgram(p.desc); err != nil {
			renderer.Close()
			return nil, fmt.Errorf("program %s: %w", p.desc.Name, err)
		}
	}

	if renderer.cube, err = backend.NewGeometry(NewCubeMeshData()); err != nil {
		renderer.Close()
		return nil, fmt.Errorf("backing box geometry: %w", err)
	}

	if renderer.quad, err = backend.NewGeometry(NewQuadMeshData()); err != nil {
		renderer.Close()
		return nil, fmt.Errorf("portal quad geometry: %w", err)
	}

	return renderer, nil

}

// AddProgram creates an additional program owned by the Renderer, for entities that use their own shaders.
func (renderer *Renderer) AddProgram(desc ProgramDesc) (ProgramHandle, error) {
	program, err := renderer.backend.NewProgram(desc)
	if err != nil {
		return NoProgram, fmt.Errorf("program %s: %w", desc.Name, err)
	}
	renderer.extraPrograms = append(renderer.extraPrograms, program)
	return program, nil
}

// Advance moves time-driven animation forward by dt seconds.
func (renderer *Renderer) Advance(dt float32) {
	renderer.elapsed += dt
	renderer.spinTime += dt
	angle, finished := renderer.spin.Update(dt)
	if finished {
		// Start the next turn from wherever this one overshot to.
		renderer.spinTime = math32.Mod(renderer.spinTime, renderer.options.RotationPeriod)
		renderer.spin.Reset()
		angle, _ = renderer.spin.Update(renderer.spinTime)
	}
	renderer.spinAngle = angle
}

// SpinAngle returns the current rotation applied to FlagRotating entities, in radians.
func (renderer *Renderer) SpinAngle() float32 {
	return renderer.spinAngle
}

type recordedPortal struct {
	portal      *Portal
	destination *Scene
	entered     bool
}

// DrawFrame renders the World's current Scene and, through the portals the viewer can see, each portal's destination
// Scene clipped to the portal's stencil mask. Destination scenes are drawn one level deep; their own portals are not
// drawn. If the viewer crossed a portal, the World switches to its destination after the frame is drawn, so this frame
// still shows the Scene it started in.
func (renderer *Renderer) DrawFrame(world *World, aspect float32) FrameStats {

	device := renderer.backend
	stats := FrameStats{Scene: world.CurrentScene(), NextScene: world.CurrentScene()}

	scene := world.Scene(stats.Scene)
	if scene == nil {
		renderer.log.Error("current scene does not exist", zap.Int("scene", int(stats.Scene)))
		return stats
	}

	camera := world.Camera

	projection := camera.Projection(aspect)
	view := camera.ViewMatrix()
	device.UploadUniformBlock(renderer.matrices, MatricesProjectionOffset, 64, projection[:])
	device.UploadUniformBlock(renderer.matrices, MatricesViewOffset, 64, view[:])
	device.BindUniformBlock(MatricesBinding, renderer.matrices)

	// 1) Clear everything; stencil writes are off and the test passes by default.
	device.SetClearColor(scene.ClearColor)
	device.Clear(ClearAll)
	device.SetStencilMask(0x00)
	device.SetStencilFunc(CompareAlways, 0, 0xFF)
	device.SetStencilOp(StencilKeep, StencilKeep, StencilKeep)
	device.SetDepthWrite(true)
	device.SetPolygonMode(PolygonFill)

	// 2) The current scene, only where no portal has been written.
	device.SetStencilFunc(CompareEqual, 0, 0xFF)
	renderer.drawScene(world, scene, &stats)

	// 3) Portal masks: the quad for portals in focus, the backing box for portals crossed this frame.
	var recorded [MaxPortalsPerScene]recordedPortal
	recordedCount := 0
	var entered *recordedPortal

	device.SetStencilMask(0xFF)
	device.SetStencilOp(StencilKeep, StencilKeep, StencilReplace)
	device.UseProgram(renderer.portalProgram)

	eye := camera.Origin

	for i := range scene.Portals() {

		portal := scene.Portal(PortalID(i))
		result := portal.Track(eye)

		var transform mgl32.Mat4
		var geometry GeometryHandle

		switch result.State {
		case Focused:
			transform, geometry = portal.QuadMatrix, renderer.quad
		case JustTraversed:
			transform, geometry = portal.BackingMatrix, renderer.cube
		default:
			continue
		}

		destination := world.Scene(portal.Destination)
		if destination == nil {
			renderer.log.Error("portal destination does not exist",
				zap.Int("scene", int(stats.Scene)),
				zap.Int("portal", i),
				zap.Int("destination", int(portal.Destination)),
			)
			continue
		}

		device.SetStencilFunc(CompareAlways, portal.Mask, 0xFF)
		device.SetUniform(renderer.portalProgram, UniformModel, transform)
		device.SetUniform(renderer.portalProgram, UniformColor, destination.ClearColor.Floats())
		device.DrawTriangles(geometry)
		stats.DrawCalls++
		stats.PortalsDrawn++

		recorded[recordedCount] = recordedPortal{portal: portal, destination: destination, entered: result.Entered()}
		if result.Entered() && entered == nil {
			entered = &recorded[recordedCount]
		}
		recordedCount++

	}

	// 4) Lock the masks and forget the depth of what's been drawn so far, so destination geometry isn't hidden by the
	// current scene's nearer geometry.
	device.SetStencilMask(0x00)
	device.SetStencilOp(StencilKeep, StencilKeep, StencilKeep)
	device.Clear(ClearDepth)

	// 5) Each destination scene, clipped to its portal's mask.
	for _, rec := range recorded[:recordedCount] {
		device.SetStencilFunc(CompareEqual, rec.portal.Mask, 0xFF)
		renderer.drawScene(world, rec.destination, &stats)
		stats.DestinationDraws++
		if rec.entered {
			rec.portal.InFocus = false
		}
	}

	device.SetStencilFunc(CompareAlways, 0, 0xFF)

	if renderer.Debug {
		renderer.drawDebug(scene, &stats)
	}

	if entered != nil {
		stats.Entered = true
		stats.NextScene = entered.portal.Destination
		entered.destination.ResetFocus()
		world.current = entered.portal.Destination
		renderer.log.Debug("portal entered",
			zap.Int("from", int(stats.Scene)),
			zap.Int("to", int(stats.NextScene)),
			zap.String("title", entered.destination.Title),
		)
	}

	return stats

}

func (renderer *Renderer) drawScene(world *World, scene *Scene, stats *FrameStats) {

	device := renderer.backend

	for i := range scene.Entities() {

		entity := scene.Entity(EntityID(i))

		model := world.Model(entity.Model)
		if model == nil {
			panic(fmt.Sprintf("portal3d: scene %q entity %d references %s %d", scene.Title, i, ErrUnknownModel, entity.Model))
		}

		skybox := entity.Flags.Has(FlagSkybox)

		program := entity.Program
		if program == NoProgram {
			if skybox {
				program = renderer.skyboxProgram
			} else {
				program = renderer.standardProgram
			}
		}

		transform := entity.Transform()
		if entity.Flags.Has(FlagRotating) {
			transform = transform.Mul4(mgl32.HomogRotate3DY(renderer.spinAngle))
		}

		device.UseProgram(program)
		device.SetUniform(program, UniformModel, transform)
		device.SetUniform(program, UniformTime, renderer.elapsed)

		if skybox {
			device.BindTexture(SlotCubeMap, model.CubeMap)
			device.SetDepthWrite(false)
		}

		for _, mesh := range model.Meshes {
			if !skybox {
				device.BindTexture(SlotAlbedo, mesh.Albedo)
				device.BindTexture(SlotNormal, mesh.Normal)
				device.SetUniform(program, UniformHasNormal, mesh.Normal != NoTexture)
				device.SetUniform(program, UniformBaseColor, mesh.BaseColor.Floats())
			}
			device.DrawTriangles(mesh.Geometry)
			stats.DrawCalls++
		}

		if skybox {
			device.SetDepthWrite(true)
		}

		if entity.Flags.Has(FlagWireframe) {
			device.SetPolygonMode(PolygonLine)
			device.UseProgram(renderer.debugProgram)
			device.SetUniform(renderer.debugProgram, UniformModel, transform)
			device.SetUniform(renderer.debugProgram, UniformColor, renderer.options.WireframeColor.Floats())
			for _, mesh := range model.Meshes {
				device.DrawTriangles(mesh.Geometry)
				stats.DrawCalls++
			}
			device.SetPolygonMode(PolygonFill)
		}

		stats.EntitiesDrawn++

	}

}

// drawDebug outlines every portal of the scene, visible or not.
func (renderer *Renderer) drawDebug(scene *Scene, stats *FrameStats) {

	device := renderer.backend

	device.SetPolygonMode(PolygonLine)
	device.SetDepthWrite(false)
	device.UseProgram(renderer.debugProgram)
	device.SetUniform(renderer.debugProgram, UniformColor, renderer.options.DebugColor.Floats())

	for _, portal := range scene.Portals() {
		device.SetUniform(renderer.debugProgram, UniformModel, portal.QuadMatrix)
		device.DrawTriangles(renderer.quad)
		stats.DrawCalls++
	}

	device.SetDepthWrite(true)
	device.SetPolygonMode(PolygonFill)

}

// Close releases the Renderer's resources. It's safe to call on a partially constructed Renderer.
func (renderer *Renderer) Close() {

	resources := renderer.backend

	for _, program := range append([]ProgramHandle{
		renderer.standardProgram,
		renderer.skyboxProgram,
		renderer.portalProgram,
		renderer.debugProgram,
	}, renderer.extraPrograms...) {
		if program != NoProgram {
			resources.ReleaseProgram(program)
		}
	}

	for _, geometry := range []GeometryHandle{renderer.cube, renderer.quad} {
		if geometry != NoGeometry {
			resources.ReleaseGeometry(geometry)
		}
	}

	if renderer.matrices != NoBuffer {
		resources.ReleaseBuffer(renderer.matrices)
	}

	renderer.standardProgram, renderer.skyboxProgram, renderer.portalProgram, renderer.debugProgram = NoProgram, NoProgram, NoProgram, NoProgram
	renderer.extraPrograms = nil
	renderer.cube, renderer.quad = NoGeometry, NoGeometry
	renderer.matrices = NoBuffer

}
