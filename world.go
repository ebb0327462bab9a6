package portal3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// FrameTimer counts frames and the time they cover. The game loop advances it by a fixed step each update.
type FrameTimer struct {
	Delta   float32 // Seconds covered by the latest frame
	Elapsed float32 // Seconds since the first frame
	Frames  int
}

// Advance adds a frame of dt seconds.
func (timer *FrameTimer) Advance(dt float32) {
	timer.Delta = dt
	timer.Elapsed += dt
	timer.Frames++
}

// World is the root container: the camera, the player, every Scene and every Model, and which Scene is current.
// It is owned by the game loop; nothing else reads or writes it concurrently.
type World struct {
	Camera *Camera
	Player Player
	Timer  FrameTimer

	scenes  Bounded[Scene]
	models  Bounded[*Model]
	current SceneID

	loader  ModelLoader
	aligner Aligner
	log     *zap.Logger
}

// NewWorld creates an empty World loading models through loader. A nil logger discards output.
func NewWorld(loader ModelLoader, log *zap.Logger) *World {

	if log == nil {
		log = zap.NewNop()
	}

	return &World{
		Camera:  NewCamera(log.Named("camera")),
		Player:  NewPlayer(mgl32.Vec3{}, mgl32.Vec3{0.5, 1.7, 0.5}),
		scenes:  NewBounded[Scene]("scene", MaxScenes),
		models:  NewBounded[*Model]("model", MaxModels),
		loader:  loader,
		aligner: NewAligner(log.Named("align")),
		log:     log,
	}

}

// AddScene appends a new, empty Scene and returns its ID.
func (world *World) AddScene(title string) (SceneID, error) {
	index, err := world.scenes.Push(newScene(title))
	if err != nil {
		return -1, fmt.Errorf("add scene %q: %w", title, err)
	}
	return SceneID(index), nil
}

// SceneCount returns the number of Scenes.
func (world *World) SceneCount() int {
	return world.scenes.Len()
}

// Scene returns the Scene with the given ID, or nil.
func (world *World) Scene(id SceneID) *Scene {
	return world.scenes.At(int(id))
}

func (world *World) scene(id SceneID) (*Scene, error) {
	scene := world.Scene(id)
	if scene == nil {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrUnknownScene, id, world.scenes.Len())
	}
	return scene, nil
}

// CurrentScene returns the ID of the Scene the viewer is in.
func (world *World) CurrentScene() SceneID {
	return world.current
}

// SetCurrentScene moves the viewer into the given Scene.
func (world *World) SetCurrentScene(id SceneID) error {
	if _, err := world.scene(id); err != nil {
		return err
	}
	world.current = id
	return nil
}

// AddModel loads a model through the World's loader and registers it.
func (world *World) AddModel(path string) (ModelID, error) {
	model, err := world.loader.LoadModel(path)
	if err != nil {
		return NoModel, err
	}
	return world.AddModelData(model)
}

// AddModelSkybox builds a skybox model from six face images and registers it.
func (world *World) AddModelSkybox(faces [6]string) (ModelID, error) {
	model, err := world.loader.LoadSkyboxModel(faces)
	if err != nil {
		return NoModel, err
	}
	return world.AddModelData(model)
}

// AddModelData registers an already loaded model.
func (world *World) AddModelData(model *Model) (ModelID, error) {
	index, err := world.models.Push(model)
	if err != nil {
		return NoModel, fmt.Errorf("add model %s: %w", model.Path, err)
	}
	return ModelID(index), nil
}

// ModelCount returns the number of registered models.
func (world *World) ModelCount() int {
	return world.models.Len()
}

// Model returns the model with the given ID, or nil.
func (world *World) Model(id ModelID) *Model {
	if m := world.models.At(int(id)); m != nil {
		return *m
	}
	return nil
}

// AddEntity adds an Entity to the Scene. Its bounding box is computed here, from the model's reference box scaled by
// desc.Scale and moved by desc.Position, and is not updated afterwards.
func (world *World) AddEntity(sceneID SceneID, desc EntityDesc) (EntityID, error) {

	scene, err := world.scene(sceneID)
	if err != nil {
		return -1, fmt.Errorf("add entity: %w", err)
	}

	model := world.Model(desc.Model)
	if model == nil {
		return -1, fmt.Errorf("add entity to scene %d: %w: %d (have %d)", sceneID, ErrUnknownModel, desc.Model, world.models.Len())
	}

	scale := desc.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}

	entity := Entity{
		Model:    desc.Model,
		Position: desc.Position,
		Scale:    scale,
		Yaw:      desc.Yaw,
		Program:  desc.Program,
		Flags:    desc.Flags,
		Bounds:   model.Bounds.Transformed(desc.Position, scale),
	}

	index, err := scene.entities.Push(entity)
	if err != nil {
		return -1, fmt.Errorf("add entity to scene %d: %w", sceneID, err)
	}

	if desc.Flags.Has(FlagSkybox) && scene.Skybox == NoModel {
		scene.Skybox = desc.Model
	}

	return EntityID(index), nil

}

// Entity returns the Entity in the given Scene, or nil.
func (world *World) Entity(sceneID SceneID, id EntityID) *Entity {
	if scene := world.Scene(sceneID); scene != nil {
		return scene.Entity(id)
	}
	return nil
}

// AddPortal adds a Portal leading out of the home Scene. The mask must be nonzero and unused by the home Scene's other
// portals. The quad and backing box matrices are computed here once; portals don't move afterwards.
func (world *World) AddPortal(home SceneID, desc PortalDesc) (PortalID, error) {

	scene, err := world.scene(home)
	if err != nil {
		return -1, fmt.Errorf("add portal: %w", err)
	}

	if desc.Mask == 0 {
		return -1, fmt.Errorf("add portal to scene %d: %w", home, ErrInvalidStencilMask)
	}

	if desc.Normal.Len() < 1e-6 {
		return -1, fmt.Errorf("add portal to scene %d: %w", home, ErrInvalidPortalNormal)
	}

	for _, other := range scene.Portals() {
		if other.Mask == desc.Mask {
			return -1, fmt.Errorf("add portal to scene %d: %w: %d", home, ErrDuplicateStencilMask, desc.Mask)
		}
	}

	normal := desc.Normal.Normalize()
	rotation := world.aligner.Align(PortalQuadNormal, normal)

	portal := Portal{
		Home:          home,
		Destination:   desc.Destination,
		Position:      desc.Position,
		Normal:        normal,
		Dimensions:    desc.Dimensions,
		Mask:          desc.Mask,
		QuadMatrix:    world.aligner.PortalQuadMatrix(desc.Position, normal, desc.Dimensions),
		BackingMatrix: world.aligner.BackingBoxMatrix(desc.Position, normal, desc.Dimensions, BackingBoxDepth),
		Right:         rotation.Rotate(WorldRight),
		Up:            rotation.Rotate(WorldUp),
	}

	index, err := scene.portals.Push(portal)
	if err != nil {
		return -1, fmt.Errorf("add portal to scene %d: %w", home, err)
	}

	return PortalID(index), nil

}

// Portal returns the Portal in the given Scene, or nil.
func (world *World) Portal(sceneID SceneID, id PortalID) *Portal {
	if scene := world.Scene(sceneID); scene != nil {
		return scene.Portal(id)
	}
	return nil
}

// Validate checks references that can't be checked while the World is being built: every portal's destination and
// every scene's skybox must exist.
func (world *World) Validate() error {
	for i, scene := range world.scenes.Slice() {
		for p, portal := range scene.Portals() {
			if world.Scene(portal.Destination) == nil {
				return fmt.Errorf("scene %d portal %d: destination %w: %d", i, p, ErrUnknownScene, portal.Destination)
			}
		}
		if scene.Skybox != NoModel && world.Model(scene.Skybox) == nil {
			return fmt.Errorf("scene %d skybox: %w: %d", i, ErrUnknownModel, scene.Skybox)
		}
	}
	if world.scenes.Len() > 0 && world.Scene(world.current) == nil {
		return fmt.Errorf("current scene: %w: %d", ErrUnknownScene, world.current)
	}
	return nil
}

// Destroy releases every model's GPU-side resources. The World must not be drawn afterwards.
func (world *World) Destroy(resources Resources) {
	for _, model := range world.models.Slice() {
		model.Release(resources)
	}
	world.log.Info("world destroyed", zap.Int("models", world.models.Len()), zap.Int("scenes", world.scenes.Len()))
}
