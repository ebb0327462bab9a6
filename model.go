package portal3d

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Mesh is one drawable part of a Model: uploaded geometry plus the textures and color it is drawn with.
type Mesh struct {
	Name      string
	Geometry  GeometryHandle
	Albedo    TextureHandle // NoTexture when the mesh is untextured
	Normal    TextureHandle // NoTexture when the mesh has no normal map
	BaseColor Color         // Alpha 0 when there's no base color
	Triangles int
}

// Model represents a loaded asset. Models are owned by the World and referenced by Entities through a ModelID.
type Model struct {
	Path    string
	Bounds  BoundingBox // Reference bounding box in model space
	Meshes  []Mesh
	Skybox  bool
	CubeMap TextureHandle // The cube map for skybox models; NoTexture otherwise
}

// Release frees the Model's GPU-side resources.
func (model *Model) Release(resources Resources) {
	for _, mesh := range model.Meshes {
		resources.ReleaseGeometry(mesh.Geometry)
		if mesh.Albedo != NoTexture {
			resources.ReleaseTexture(mesh.Albedo)
		}
		if mesh.Normal != NoTexture {
			resources.ReleaseTexture(mesh.Normal)
		}
	}
	if model.CubeMap != NoTexture {
		resources.ReleaseTexture(model.CubeMap)
	}
	model.Meshes = nil
	model.CubeMap = NoTexture
}

// ModelLoader loads models for a World.
type ModelLoader interface {
	LoadModel(path string) (*Model, error)
	LoadSkyboxModel(faces [6]string) (*Model, error)
}

// BuiltinPrefix prefixes the paths of procedurally built models ("builtin:cube", "builtin:plane", "builtin:quad").
const BuiltinPrefix = "builtin:"

// AssetLoader is the ModelLoader that uploads through a Resources implementation. It loads .gltf / .glb files and
// builtin shapes, and builds skyboxes from six face images.
type AssetLoader struct {
	resources Resources
	log       *zap.Logger
}

// NewAssetLoader returns an AssetLoader uploading to resources.
func NewAssetLoader(resources Resources, log *zap.Logger) *AssetLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetLoader{resources: resources, log: log}
}

// LoadModel loads the model at path. Paths starting with BuiltinPrefix produce procedural shapes.
func (loader *AssetLoader) LoadModel(path string) (*Model, error) {

	var parts []meshPart

	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		mesh, err := builtinMesh(name)
		if err != nil {
			return nil, err
		}
		parts = []meshPart{{data: mesh}}
	} else {
		var err error
		parts, err = loadGLTFParts(path)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", path, err)
		}
	}

	model, err := loader.upload(path, parts)
	if err != nil {
		return nil, err
	}

	loader.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(model.Meshes)),
		zap.Float32s("size", model.Bounds.Diagonal[:]),
	)

	return model, nil

}

// LoadSkyboxModel builds a skybox cube whose faces sample the six images given (+X, -X, +Y, -Y, +Z, -Z).
func (loader *AssetLoader) LoadSkyboxModel(faces [6]string) (*Model, error) {

	cubeMap, err := loader.resources.NewCubeTexture(faces)
	if err != nil {
		return nil, fmt.Errorf("load skybox: %w", err)
	}

	meshes := NewSkyboxMeshData()
	parts := make([]meshPart, 0, len(meshes))
	for _, m := range meshes {
		parts = append(parts, meshPart{data: m})
	}

	model, err := loader.upload("skybox", parts)
	if err != nil {
		loader.resources.ReleaseTexture(cubeMap)
		return nil, err
	}
	model.Skybox = true
	model.CubeMap = cubeMap

	loader.log.Info("skybox loaded", zap.Strings("faces", faces[:]))

	return model, nil

}

type meshPart struct {
	data      *MeshData
	baseColor Color
	albedo    string // Texture path, if any
}

func (loader *AssetLoader) upload(path string, parts []meshPart) (*Model, error) {

	if len(parts) == 0 {
		return nil, fmt.Errorf("model %s: no meshes", path)
	}

	model := &Model{Path: path}

	for i, part := range parts {

		if err := part.data.Validate(); err != nil {
			model.Release(loader.resources)
			return nil, err
		}

		geometry, err := loader.resources.NewGeometry(part.data)
		if err != nil {
			model.Release(loader.resources)
			return nil, fmt.Errorf("model %s: upload mesh %q: %w", path, part.data.Name, err)
		}

		mesh := Mesh{
			Name:      part.data.Name,
			Geometry:  geometry,
			BaseColor: part.baseColor,
			Triangles: part.data.TriangleCount(),
		}

		if part.albedo != "" {
			if mesh.Albedo, err = loader.resources.NewTexture(part.albedo); err != nil {
				loader.resources.ReleaseGeometry(geometry)
				model.Release(loader.resources)
				return nil, fmt.Errorf("model %s: texture %s: %w", path, part.albedo, err)
			}
		}

		model.Meshes = append(model.Meshes, mesh)

		if i == 0 {
			model.Bounds = part.data.Bounds()
		} else {
			model.Bounds = model.Bounds.Union(part.data.Bounds())
		}

	}

	return model, nil

}

func builtinMesh(name string) (*MeshData, error) {
	switch name {
	case "cube":
		return NewCubeMeshData(), nil
	case "plane":
		return NewPlaneMeshData(), nil
	case "quad":
		return NewQuadMeshData(), nil
	}
	return nil, fmt.Errorf("%w: no builtin shape named %q", ErrUnknownModel, name)
}
