package portal3d

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// EntityFlags is a bitmask of per-entity render behaviors.
type EntityFlags uint8

const (
	FlagRotating  EntityFlags = 1 << iota // Spins around +Y over time
	FlagWireframe                         // Gets a second, line-mode overdraw pass
	FlagSkybox                            // Drawn with the cube map bound, without translation or depth writes
)

// Has returns if all of the given flags are set.
func (flags EntityFlags) Has(other EntityFlags) bool {
	return flags&other == other
}

var flagNames = []struct {
	flag EntityFlags
	name string
}{
	{FlagRotating, "rotating"},
	{FlagWireframe, "wireframe"},
	{FlagSkybox, "skybox"},
}

func (flags EntityFlags) String() string {
	names := []string{}
	for _, f := range flagNames {
		if flags.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseEntityFlag returns the flag with the given name ("rotating", "wireframe", "skybox").
func ParseEntityFlag(name string) (EntityFlags, bool) {
	for _, f := range flagNames {
		if f.name == strings.ToLower(name) {
			return f.flag, true
		}
	}
	return 0, false
}

// Entity is a drawable instance of a Model.
type Entity struct {
	Model    ModelID
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Yaw      float32 // Rotation around +Y in radians
	Program  ProgramHandle
	Flags    EntityFlags
	// Bounds is derived from the model's reference box, the position and the scale when the Entity is added. It is
	// a snapshot; changing Position or Scale afterwards does not update it.
	Bounds BoundingBox
}

// EntityDesc describes an Entity to add to a Scene.
type EntityDesc struct {
	Model    ModelID
	Position mgl32.Vec3
	Scale    mgl32.Vec3 // Zero means {1, 1, 1}
	Yaw      float32
	Program  ProgramHandle
	Flags    EntityFlags
}

// Transform returns the Entity's base model matrix: translate * rotate(yaw) * scale.
func (entity *Entity) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(entity.Position[0], entity.Position[1], entity.Position[2]).
		Mul4(mgl32.HomogRotate3DY(entity.Yaw)).
		Mul4(mgl32.Scale3D(entity.Scale[0], entity.Scale[1], entity.Scale[2]))
}

// Scene is a self-contained set of Entities and the Portals leading out of it.
type Scene struct {
	Title      string
	Skybox     ModelID // NoModel when the scene has no skybox
	ClearColor Color   // Background; also the flat color of portal windows leading into this scene
	entities   Bounded[Entity]
	portals    Bounded[Portal]
}

func newScene(title string) Scene {
	return Scene{
		Title:    title,
		Skybox:   NoModel,
		entities: NewBounded[Entity]("entity", MaxEntitiesPerScene),
		portals:  NewBounded[Portal]("portal", MaxPortalsPerScene),
	}
}

// Entities returns the Scene's entities; the slice aliases the Scene's storage.
func (scene *Scene) Entities() []Entity {
	return scene.entities.Slice()
}

// Portals returns the Scene's portals; the slice aliases the Scene's storage.
func (scene *Scene) Portals() []Portal {
	return scene.portals.Slice()
}

// Entity returns the Entity with the given ID, or nil.
func (scene *Scene) Entity(id EntityID) *Entity {
	return scene.entities.At(int(id))
}

// Portal returns the Portal with the given ID, or nil.
func (scene *Scene) Portal(id PortalID) *Portal {
	return scene.portals.At(int(id))
}

// ResetFocus clears the InFocus flag of every portal in the Scene.
func (scene *Scene) ResetFocus() {
	for i := range scene.portals.Slice() {
		scene.portals.At(i).InFocus = false
	}
}
