package portal3d

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// SceneFile is the persisted description of a World: its scenes, the models and shaders they draw with, and the scene
// the viewer starts in. It's read from YAML or JSON.
type SceneFile struct {
	StartScene int           `yaml:"start_scene" json:"start_scene"`
	Scenes     []SceneEntry  `yaml:"scenes" json:"scenes"`
	Models     []ModelEntry  `yaml:"models" json:"models"`
	Shaders    []ShaderEntry `yaml:"shaders,omitempty" json:"shaders,omitempty"`

	dir string // Relative paths are resolved against this directory
}

// SceneEntry describes one Scene.
type SceneEntry struct {
	Title      string        `yaml:"title" json:"title"`
	Skybox     *int          `yaml:"skybox,omitempty" json:"skybox,omitempty"` // Model index
	ClearColor []float32     `yaml:"clear_color,omitempty" json:"clear_color,omitempty"`
	Entities   []EntityEntry `yaml:"entities" json:"entities"`
	Portals    []PortalEntry `yaml:"portals,omitempty" json:"portals,omitempty"`
}

// EntityEntry describes one Entity. Yaw is in degrees.
type EntityEntry struct {
	Model    int       `yaml:"model" json:"model"`
	Shader   *int      `yaml:"shader,omitempty" json:"shader,omitempty"`
	Position []float32 `yaml:"position,omitempty" json:"position,omitempty"`
	Scale    []float32 `yaml:"scale,omitempty" json:"scale,omitempty"`
	Yaw      float32   `yaml:"yaw,omitempty" json:"yaw,omitempty"`
	Flags    []string  `yaml:"flags,omitempty" json:"flags,omitempty"`
}

// PortalEntry describes one Portal. Its stencil mask is assigned when the file is built.
type PortalEntry struct {
	Destination int       `yaml:"destination" json:"destination"`
	Normal      []float32 `yaml:"normal" json:"normal"`
	Center      []float32 `yaml:"center" json:"center"`
	Dimensions  []float32 `yaml:"dimensions" json:"dimensions"`
}

// ModelEntry describes a model file, or a skybox when Faces is set.
type ModelEntry struct {
	Index int       `yaml:"index" json:"index"`
	File  string    `yaml:"file,omitempty" json:"file,omitempty"`
	Faces []string  `yaml:"faces,omitempty" json:"faces,omitempty"` // +X, -X, +Y, -Y, +Z, -Z
	Color []float32 `yaml:"color,omitempty" json:"color,omitempty"` // Base color override, RGBA
}

// ShaderEntry describes a shader program.
type ShaderEntry struct {
	Index    int    `yaml:"index" json:"index"`
	Kind     string `yaml:"kind,omitempty" json:"kind,omitempty"` // standard, skybox, portal or debug
	Vertex   string `yaml:"vertex,omitempty" json:"vertex,omitempty"`
	Fragment string `yaml:"fragment,omitempty" json:"fragment,omitempty"`
	Noise    string `yaml:"noise,omitempty" json:"noise,omitempty"`
}

// LoadSceneFile reads a scene file. Relative asset paths in it are resolved against the file's directory.
func LoadSceneFile(path string) (*SceneFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	file, err := ParseSceneFile(raw)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", path, err)
	}
	file.dir = filepath.Dir(path)
	return file, nil
}

// ParseSceneFile parses a scene file from YAML or JSON.
func ParseSceneFile(data []byte) (*SceneFile, error) {
	file := &SceneFile{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("parse scene file: %w", err)
	}
	return file, nil
}

// Save writes the scene file to path, as JSON if the extension is .json and YAML otherwise.
func (file *SceneFile) Save(path string) error {

	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(file, "", "  ")
	} else {
		data, err = yaml.Marshal(file)
	}

	if err != nil {
		return fmt.Errorf("encode scene file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene file: %w", err)
	}

	return nil

}

func (file *SceneFile) resolve(path string) string {
	if path == "" || strings.HasPrefix(path, BuiltinPrefix) || filepath.IsAbs(path) || file.dir == "" {
		return path
	}
	return filepath.Join(file.dir, path)
}

// ParseProgramKind returns the ProgramKind with the given name; an empty name is ProgramStandard.
func ParseProgramKind(name string) (ProgramKind, error) {
	switch strings.ToLower(name) {
	case "", "standard":
		return ProgramStandard, nil
	case "skybox":
		return ProgramSkybox, nil
	case "portal":
		return ProgramPortal, nil
	case "debug":
		return ProgramDebug, nil
	}
	return ProgramStandard, fmt.Errorf("unknown shader kind %q", name)
}

// Build loads the file's shaders and models and adds its scenes to the World. Shaders are created through the
// Renderer so it releases them on Close. Portals get stencil masks 1, 2, 3... in the order they're listed in their home
// scene. Every index in the file is checked; an out of range index fails the build.
func (file *SceneFile) Build(world *World, renderer *Renderer) error {

	programs := map[int]ProgramHandle{}

	for _, entry := range file.Shaders {
		kind, err := ParseProgramKind(entry.Kind)
		if err != nil {
			return fmt.Errorf("shader %d: %w", entry.Index, err)
		}
		program, err := renderer.AddProgram(ProgramDesc{
			Name:     fmt.Sprintf("shader %d", entry.Index),
			Kind:     kind,
			Vertex:   file.resolve(entry.Vertex),
			Fragment: file.resolve(entry.Fragment),
			Noise:    file.resolve(entry.Noise),
		})
		if err != nil {
			return err
		}
		programs[entry.Index] = program
	}

	models := map[int]ModelID{}

	for _, entry := range file.Models {

		var id ModelID
		var err error

		if len(entry.Faces) > 0 {
			if len(entry.Faces) != 6 {
				return fmt.Errorf("model %d: a skybox needs 6 faces, got %d", entry.Index, len(entry.Faces))
			}
			var faces [6]string
			for i, face := range entry.Faces {
				faces[i] = file.resolve(face)
			}
			id, err = world.AddModelSkybox(faces)
		} else {
			id, err = world.AddModel(file.resolve(entry.File))
		}

		if err != nil {
			return fmt.Errorf("model %d: %w", entry.Index, err)
		}

		if len(entry.Color) > 0 {
			color, err := colorFrom(entry.Color)
			if err != nil {
				return fmt.Errorf("model %d: %w", entry.Index, err)
			}
			model := world.Model(id)
			for i := range model.Meshes {
				model.Meshes[i].BaseColor = color
			}
		}

		models[entry.Index] = id

	}

	// Scenes are created up front so portals can point at scenes listed after their own.
	sceneIDs := make([]SceneID, len(file.Scenes))
	for i, entry := range file.Scenes {
		id, err := world.AddScene(entry.Title)
		if err != nil {
			return err
		}
		sceneIDs[i] = id
	}

	for i, entry := range file.Scenes {

		sceneID := sceneIDs[i]
		scene := world.Scene(sceneID)

		if len(entry.ClearColor) > 0 {
			color, err := colorFrom(entry.ClearColor)
			if err != nil {
				return fmt.Errorf("scene %q clear color: %w", entry.Title, err)
			}
			scene.ClearColor = color
		}

		if entry.Skybox != nil {
			model, ok := models[*entry.Skybox]
			if !ok {
				return fmt.Errorf("scene %q skybox: %w: %d", entry.Title, ErrUnknownModel, *entry.Skybox)
			}
			if _, err := world.AddEntity(sceneID, EntityDesc{Model: model, Flags: FlagSkybox}); err != nil {
				return err
			}
		}

		for e, ent := range entry.Entities {
			desc, err := file.entityDesc(ent, models, programs)
			if err != nil {
				return fmt.Errorf("scene %q entity %d: %w", entry.Title, e, err)
			}
			if _, err := world.AddEntity(sceneID, desc); err != nil {
				return fmt.Errorf("scene %q: %w", entry.Title, err)
			}
		}

		for p, port := range entry.Portals {

			if port.Destination < 0 || port.Destination >= len(sceneIDs) {
				return fmt.Errorf("scene %q portal %d: %w: %d", entry.Title, p, ErrUnknownScene, port.Destination)
			}

			normal, err := vec3From(port.Normal, mgl32.Vec3{})
			if err != nil {
				return fmt.Errorf("scene %q portal %d normal: %w", entry.Title, p, err)
			}
			center, err := vec3From(port.Center, mgl32.Vec3{})
			if err != nil {
				return fmt.Errorf("scene %q portal %d center: %w", entry.Title, p, err)
			}
			if len(port.Dimensions) != 2 {
				return fmt.Errorf("scene %q portal %d: dimensions need 2 values, got %d", entry.Title, p, len(port.Dimensions))
			}
			_, err = world.AddPortal(sceneID, PortalDesc{
				Destination: sceneIDs[port.Destination],
				Position:    center,
				Normal:      normal,
				Dimensions:  mgl32.Vec2{port.Dimensions[0], port.Dimensions[1]},
				Mask:        StencilMask(p + 1),
			})
			if err != nil {
				return fmt.Errorf("scene %q: %w", entry.Title, err)
			}

		}

	}

	if len(sceneIDs) > 0 {
		if file.StartScene < 0 || file.StartScene >= len(sceneIDs) {
			return fmt.Errorf("start scene: %w: %d", ErrUnknownScene, file.StartScene)
		}
		if err := world.SetCurrentScene(sceneIDs[file.StartScene]); err != nil {
			return err
		}
	}

	return world.Validate()

}

func (file *SceneFile) entityDesc(entry EntityEntry, models map[int]ModelID, programs map[int]ProgramHandle) (EntityDesc, error) {

	desc := EntityDesc{Yaw: ToRadians(entry.Yaw)}

	model, ok := models[entry.Model]
	if !ok {
		return desc, fmt.Errorf("%w: %d", ErrUnknownModel, entry.Model)
	}
	desc.Model = model

	if entry.Shader != nil {
		program, ok := programs[*entry.Shader]
		if !ok {
			return desc, fmt.Errorf("unknown shader %d", *entry.Shader)
		}
		desc.Program = program
	}

	var err error
	if desc.Position, err = vec3From(entry.Position, mgl32.Vec3{}); err != nil {
		return desc, fmt.Errorf("position: %w", err)
	}
	if desc.Scale, err = vec3From(entry.Scale, mgl32.Vec3{1, 1, 1}); err != nil {
		return desc, fmt.Errorf("scale: %w", err)
	}

	for _, name := range entry.Flags {
		flag, ok := ParseEntityFlag(name)
		if !ok {
			return desc, fmt.Errorf("unknown flag %q", name)
		}
		desc.Flags |= flag
	}

	return desc, nil

}

func vec3From(values []float32, fallback mgl32.Vec3) (mgl32.Vec3, error) {
	switch len(values) {
	case 0:
		return fallback, nil
	case 3:
		return mgl32.Vec3{values[0], values[1], values[2]}, nil
	}
	return fallback, fmt.Errorf("need 3 values, got %d", len(values))
}

func colorFrom(values []float32) (Color, error) {
	switch len(values) {
	case 3:
		return NewColor(values[0], values[1], values[2], 1), nil
	case 4:
		return NewColor(values[0], values[1], values[2], values[3]), nil
	}
	return Color{}, fmt.Errorf("color needs 3 or 4 values, got %d", len(values))
}
