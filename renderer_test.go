package portal3d

import (
	"errors"
	"slices"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// portalRig is a hub with a spinning cube and a wireframe cube, and a gate at (0, 1.5, -6) facing +Z into a second
// scene with one cube. The second scene has a return gate at the same spot facing -Z.
type portalRig struct {
	world    *World
	device   *HeadlessDevice
	renderer *Renderer
	hub      SceneID
	away     SceneID
}

func newPortalRig(t testing.TB, log *zap.Logger) *portalRig {

	t.Helper()

	device := NewHeadlessDevice(nil)
	world := NewWorld(NewAssetLoader(device, nil), nil)

	renderer, err := NewRenderer(device, DefaultRendererOptions(), log)
	require.NoError(t, err)

	cube, err := world.AddModel("builtin:cube")
	require.NoError(t, err)

	hub, _ := world.AddScene("hub")
	away, _ := world.AddScene("away")
	world.Scene(hub).ClearColor = NewColor(0.1, 0.1, 0.1, 1)
	world.Scene(away).ClearColor = NewColor(0.5, 0.2, 0.2, 1)

	_, err = world.AddEntity(hub, EntityDesc{Model: cube, Position: mgl32.Vec3{0, 1, 0}, Flags: FlagRotating})
	require.NoError(t, err)
	_, err = world.AddEntity(hub, EntityDesc{Model: cube, Position: mgl32.Vec3{3, 1, 0}, Flags: FlagWireframe})
	require.NoError(t, err)
	_, err = world.AddEntity(away, EntityDesc{Model: cube, Position: mgl32.Vec3{0, 1, -10}})
	require.NoError(t, err)

	_, err = world.AddPortal(hub, PortalDesc{
		Destination: away,
		Position:    mgl32.Vec3{0, 1.5, -6},
		Normal:      mgl32.Vec3{0, 0, 1},
		Dimensions:  mgl32.Vec2{2, 3},
		Mask:        1,
	})
	require.NoError(t, err)

	_, err = world.AddPortal(away, PortalDesc{
		Destination: hub,
		Position:    mgl32.Vec3{0, 1.5, -6},
		Normal:      mgl32.Vec3{0, 0, -1},
		Dimensions:  mgl32.Vec2{2, 3},
		Mask:        1,
	})
	require.NoError(t, err)

	require.NoError(t, world.Validate())

	return &portalRig{world: world, device: device, renderer: renderer, hub: hub, away: away}

}

// frame places the eye, looking down -Z, and draws a frame from a clean recording.
func (rig *portalRig) frame(eye mgl32.Vec3) FrameStats {
	rig.world.Camera.LookAt(eye, eye.Add(mgl32.Vec3{0, 0, -1}))
	rig.device.Reset()
	return rig.renderer.DrawFrame(rig.world, 16.0/9.0)
}

func (rig *portalRig) portalDraws() []DrawRecord {
	draws := []DrawRecord{}
	for _, d := range rig.device.Draws {
		if d.Program == rig.renderer.portalProgram {
			draws = append(draws, d)
		}
	}
	return draws
}

func TestDrawFrameWithoutVisiblePortals(t *testing.T) {

	rig := newPortalRig(t, nil)

	// Off to the side of the gate.
	stats := rig.frame(mgl32.Vec3{5, 1.5, -2})

	assert.Equal(t, rig.hub, stats.Scene)
	assert.Equal(t, rig.hub, stats.NextScene)
	assert.Equal(t, 2, stats.EntitiesDrawn)
	assert.Equal(t, 0, stats.PortalsDrawn)
	assert.Equal(t, 0, stats.DestinationDraws)
	assert.False(t, stats.Entered)
	assert.Empty(t, rig.portalDraws())

	// Every scene draw passes only where the stencil is still 0, and writes nothing to it.
	for _, d := range rig.device.Draws {
		assert.Equal(t, CompareEqual, d.StencilFunc)
		assert.Equal(t, StencilMask(0), d.StencilRef)
		assert.Equal(t, uint8(0x00), d.StencilMask)
	}

}

func TestDrawFrameThroughFocusedPortal(t *testing.T) {

	rig := newPortalRig(t, nil)

	stats := rig.frame(mgl32.Vec3{0, 1.5, -3})

	assert.Equal(t, 1, stats.PortalsDrawn)
	assert.Equal(t, 1, stats.DestinationDraws)
	assert.Equal(t, 3, stats.EntitiesDrawn)
	assert.False(t, stats.Entered)
	assert.Equal(t, rig.hub, rig.world.CurrentScene())
	assert.True(t, rig.world.Portal(rig.hub, 0).InFocus)

	portals := rig.portalDraws()
	require.Len(t, portals, 1)
	assert.Equal(t, rig.renderer.quad, portals[0].Geometry)
	assert.Equal(t, CompareAlways, portals[0].StencilFunc)
	assert.Equal(t, StencilMask(1), portals[0].StencilRef)
	assert.Equal(t, uint8(0xFF), portals[0].StencilMask)
	assert.Equal(t, StencilReplace, portals[0].StencilPass)

	// The hub first, then the mask, then the destination scene clipped to it.
	phase := 0
	for _, d := range rig.device.Draws {
		switch {
		case d.Program == rig.renderer.portalProgram:
			phase = 1
		case phase == 0:
			assert.Equal(t, StencilMask(0), d.StencilRef)
		default:
			phase = 2
			assert.Equal(t, CompareEqual, d.StencilFunc)
			assert.Equal(t, StencilMask(1), d.StencilRef)
			assert.Equal(t, uint8(0x00), d.StencilMask)
		}
	}
	assert.Equal(t, 2, phase)

	// The portal window is flat-colored with the destination's clear color.
	var color any
	for _, call := range rig.device.Calls {
		if call.Op == "SetUniform" && call.Args[0] == rig.renderer.portalProgram && call.Args[1] == UniformColor {
			color = call.Args[2]
		}
	}
	assert.Equal(t, rig.world.Scene(rig.away).ClearColor.Floats(), color)

}

func TestDrawFrameClearsDepthBetweenPasses(t *testing.T) {

	rig := newPortalRig(t, nil)
	rig.frame(mgl32.Vec3{0, 1.5, -3})

	clears := []ClearMask{}
	portalDrawn := false
	depthClearedAfterPortal := false

	for _, call := range rig.device.Calls {
		switch call.Op {
		case "Clear":
			mask := call.Args[0].(ClearMask)
			clears = append(clears, mask)
			if portalDrawn && mask == ClearDepth {
				depthClearedAfterPortal = true
			}
		case "UseProgram":
			if call.Args[0] == rig.renderer.portalProgram {
				portalDrawn = true
			}
		}
	}

	assert.Equal(t, []ClearMask{ClearAll, ClearDepth}, clears)
	assert.True(t, depthClearedAfterPortal)

	// The clear color is the current scene's, set before the first clear.
	ops := rig.device.Ops()
	colorAt := slices.Index(ops, "SetClearColor")
	require.GreaterOrEqual(t, colorAt, 0)
	assert.Less(t, colorAt, slices.Index(ops, "Clear"))
	assert.Equal(t, rig.world.Scene(rig.hub).ClearColor, rig.device.Calls[colorAt].Args[0])

}

func TestDrawFrameTraversal(t *testing.T) {

	rig := newPortalRig(t, nil)

	stats := rig.frame(mgl32.Vec3{0, 1.5, -5.8})
	require.Equal(t, 1, stats.PortalsDrawn)

	// Crossing the plane: this frame still shows the hub, with the backing box drawn instead of the quad.
	stats = rig.frame(mgl32.Vec3{0, 1.5, -6.2})

	assert.True(t, stats.Entered)
	assert.Equal(t, rig.hub, stats.Scene)
	assert.Equal(t, rig.away, stats.NextScene)
	assert.Equal(t, 1, stats.DestinationDraws)
	assert.Equal(t, rig.away, rig.world.CurrentScene())
	assert.False(t, rig.world.Portal(rig.hub, 0).InFocus)

	portals := rig.portalDraws()
	require.Len(t, portals, 1)
	assert.Equal(t, rig.renderer.cube, portals[0].Geometry)

	// The next frame starts in the destination, looking back through its return gate.
	stats = rig.frame(mgl32.Vec3{0, 1.5, -6.2})
	assert.Equal(t, rig.away, stats.Scene)
	assert.False(t, stats.Entered)
	assert.Equal(t, 1, stats.PortalsDrawn)
	assert.Equal(t, 1+2, stats.EntitiesDrawn)

}

func TestDrawFrameTraversalResetsDestinationFocus(t *testing.T) {

	rig := newPortalRig(t, nil)

	// A stale focus flag on the return gate would read as a traversal on the first frame in the destination.
	rig.world.Portal(rig.away, 0).InFocus = true

	rig.frame(mgl32.Vec3{0, 1.5, -5.8})
	rig.frame(mgl32.Vec3{0, 1.5, -6.2})

	require.Equal(t, rig.away, rig.world.CurrentScene())
	assert.False(t, rig.world.Portal(rig.away, 0).InFocus)

}

func TestDrawFrameRoundTrip(t *testing.T) {

	rig := newPortalRig(t, nil)

	rig.frame(mgl32.Vec3{0, 1.5, -5.8})
	rig.frame(mgl32.Vec3{0, 1.5, -6.2})
	require.Equal(t, rig.away, rig.world.CurrentScene())

	// Step back through the return gate, which faces -Z.
	rig.frame(mgl32.Vec3{0, 1.5, -6.2})
	stats := rig.frame(mgl32.Vec3{0, 1.5, -5.8})

	assert.True(t, stats.Entered)
	assert.Equal(t, rig.hub, rig.world.CurrentScene())

}

func TestRendererSpinCarriesOvershoot(t *testing.T) {

	rig := newPortalRig(t, nil)
	renderer := rig.renderer
	require.Equal(t, float32(6), renderer.options.RotationPeriod)

	renderer.Advance(5)
	assert.InDelta(t, ToRadians(300), renderer.SpinAngle(), 1e-4)

	// A turn ends partway through this step; the second turn starts 1s in.
	renderer.Advance(2)
	assert.InDelta(t, ToRadians(60), renderer.SpinAngle(), 1e-4)

	renderer.Advance(6)
	assert.InDelta(t, ToRadians(60), renderer.SpinAngle(), 1e-4)

	renderer.Advance(5)
	assert.InDelta(t, 0, renderer.SpinAngle(), 1e-4)

}

func TestDrawFrameRotatingAndWireframe(t *testing.T) {

	rig := newPortalRig(t, nil)
	rig.renderer.Advance(1.5)

	assert.InDelta(t, math32.Pi/2, rig.renderer.SpinAngle(), 1e-4)

	rig.frame(mgl32.Vec3{5, 1.5, -2})

	rotating := rig.world.Entity(rig.hub, 0)
	expected := rotating.Transform().Mul4(mgl32.HomogRotate3DY(rig.renderer.SpinAngle()))

	var models []any
	for _, call := range rig.device.Calls {
		if call.Op == "SetUniform" && call.Args[0] == rig.renderer.standardProgram && call.Args[1] == UniformModel {
			models = append(models, call.Args[2])
		}
	}
	require.Len(t, models, 2)
	assert.Equal(t, expected, models[0])
	assert.Equal(t, rig.world.Entity(rig.hub, 1).Transform(), models[1])

	lines := 0
	for _, d := range rig.device.Draws {
		if d.PolygonMode == PolygonLine {
			lines++
			assert.Equal(t, rig.renderer.debugProgram, d.Program)
		}
	}
	assert.Equal(t, 1, lines)

	// A full period brings the spin back around.
	rig.renderer.Advance(4.5)
	assert.InDelta(t, 0, rig.renderer.SpinAngle(), 1e-4)

}

func TestDrawFrameDebugOverlay(t *testing.T) {

	rig := newPortalRig(t, nil)
	rig.renderer.Debug = true

	rig.frame(mgl32.Vec3{5, 1.5, -2})

	outlines := 0
	for _, d := range rig.device.Draws {
		if d.Program == rig.renderer.debugProgram && d.Geometry == rig.renderer.quad {
			outlines++
			assert.Equal(t, PolygonLine, d.PolygonMode)
			assert.Equal(t, CompareAlways, d.StencilFunc)
			assert.False(t, d.DepthWrite)
		}
	}
	assert.Equal(t, len(rig.world.Scene(rig.hub).Portals()), outlines)

}

func TestDrawFrameUploadsMatrices(t *testing.T) {

	rig := newPortalRig(t, nil)
	rig.frame(mgl32.Vec3{0, 1.5, -3})

	block := rig.device.UniformBlock(rig.renderer.matrices)
	projection := rig.world.Camera.Projection(16.0 / 9.0)
	view := rig.world.Camera.ViewMatrix()

	assert.Equal(t, projection[:], block[:16])
	assert.Equal(t, view[:], block[16:32])

}

func TestDrawFrameSkybox(t *testing.T) {

	rig := newPortalRig(t, nil)

	sky, err := rig.world.AddModelSkybox([6]string{"px", "nx", "py", "ny", "pz", "nz"})
	require.NoError(t, err)
	_, err = rig.world.AddEntity(rig.hub, EntityDesc{Model: sky, Flags: FlagSkybox})
	require.NoError(t, err)

	rig.frame(mgl32.Vec3{5, 1.5, -2})

	skyDraws := 0
	for _, d := range rig.device.Draws {
		if d.Program == rig.renderer.skyboxProgram {
			skyDraws++
			assert.False(t, d.DepthWrite)
		} else {
			assert.True(t, d.DepthWrite)
		}
	}
	assert.Equal(t, 6, skyDraws)

	bound := false
	for _, call := range rig.device.Calls {
		if call.Op == "BindTexture" && call.Args[0] == SlotCubeMap && call.Args[1] == rig.world.Model(sky).CubeMap {
			bound = true
		}
	}
	assert.True(t, bound)

}

func TestDrawFrameMissingDestination(t *testing.T) {

	core, logs := observer.New(zapcore.ErrorLevel)
	rig := newPortalRig(t, zap.New(core))

	rig.world.Portal(rig.hub, 0).Destination = 9

	stats := rig.frame(mgl32.Vec3{0, 1.5, -3})
	assert.Equal(t, 0, stats.PortalsDrawn)
	assert.Equal(t, 0, stats.DestinationDraws)
	assert.Equal(t, 1, logs.FilterMessage("portal destination does not exist").Len())

}

func TestDrawFrameMissingModelPanics(t *testing.T) {

	rig := newPortalRig(t, nil)
	rig.world.Entity(rig.hub, 0).Model = 42

	assert.Panics(t, func() { rig.frame(mgl32.Vec3{5, 1.5, -2}) })

}

func TestRendererCloseReleasesResources(t *testing.T) {

	device := NewHeadlessDevice(nil)

	renderer, err := NewRenderer(device, DefaultRendererOptions(), nil)
	require.NoError(t, err)

	// The matrices block, four programs, the quad and the cube.
	assert.Equal(t, 7, device.Live())

	_, err = renderer.AddProgram(ProgramDesc{Name: "custom", Kind: ProgramStandard})
	require.NoError(t, err)
	assert.Equal(t, 8, device.Live())

	desc, ok := device.Program(renderer.portalProgram)
	require.True(t, ok)
	assert.Equal(t, ProgramPortal, desc.Kind)
	assert.Equal(t, "portal", desc.Name)

	renderer.Close()
	assert.Equal(t, 0, device.Live())

	// Closing twice is harmless.
	renderer.Close()
	assert.Equal(t, 0, device.Live())

}

var errNoPortalProgram = errors.New("portal program unavailable")

// portalProgramFails fails to create the portal program.
type portalProgramFails struct {
	*HeadlessDevice
}

func (device portalProgramFails) NewProgram(desc ProgramDesc) (ProgramHandle, error) {
	if desc.Kind == ProgramPortal {
		return NoProgram, errNoPortalProgram
	}
	return device.HeadlessDevice.NewProgram(desc)
}

func TestNewRendererFailureReleasesPartialResources(t *testing.T) {

	device := NewHeadlessDevice(nil)

	_, err := NewRenderer(portalProgramFails{device}, DefaultRendererOptions(), nil)
	assert.ErrorIs(t, err, errNoPortalProgram)
	assert.Equal(t, 0, device.Live())

}

func BenchmarkDrawFrame(b *testing.B) {

	rig := newPortalRig(b, nil)
	rig.device.Record = false
	rig.world.Camera.LookAt(mgl32.Vec3{0, 1.5, -3}, mgl32.Vec3{0, 1.5, -4})

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rig.device.Reset()
		rig.renderer.DrawFrame(rig.world, 16.0/9.0)
	}

}
