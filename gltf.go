package portal3d

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// loadGLTFParts opens a .gltf or .glb file (external buffers are resolved relative to it) and returns its meshes.
func loadGLTFParts(path string) ([]meshPart, error) {

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	return gltfParts(doc, filepath.Dir(path))

}

// decodeGLTFParts decodes a self-contained .gltf / .glb from memory. Texture paths resolve against dir.
func decodeGLTFParts(data []byte, dir string) ([]meshPart, error) {

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}

	return gltfParts(doc, dir)

}

// gltfParts converts every primitive of every mesh in the document to a meshPart. Node transforms are not applied;
// meshes are taken in their own space.
func gltfParts(doc *gltf.Document, dir string) ([]meshPart, error) {

	parts := []meshPart{}

	for _, mesh := range doc.Meshes {

		for p, prim := range mesh.Primitives {

			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}

			posAccessor, exists := prim.Attributes[gltf.POSITION]
			if !exists {
				return nil, fmt.Errorf("mesh %q primitive %d: %w: no POSITION attribute", mesh.Name, p, ErrUnknownModel)
			}

			data := NewMeshData(mesh.Name)
			if len(mesh.Primitives) > 1 {
				data.Name = fmt.Sprintf("%s.%d", mesh.Name, p)
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: positions: %w", mesh.Name, err)
			}
			data.Positions = make([]mgl32.Vec3, len(positions))
			for i, v := range positions {
				data.Positions[i] = mgl32.Vec3(v)
			}

			if normalAccessor, exists := prim.Attributes[gltf.NORMAL]; exists {
				normals, err := modeler.ReadNormal(doc, doc.Accessors[normalAccessor], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: normals: %w", mesh.Name, err)
				}
				data.Normals = make([]mgl32.Vec3, len(normals))
				for i, v := range normals {
					data.Normals[i] = mgl32.Vec3(v)
				}
			}

			if uvAccessor, exists := prim.Attributes[gltf.TEXCOORD_0]; exists {
				uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvAccessor], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: uvs: %w", mesh.Name, err)
				}
				data.UVs = make([]mgl32.Vec2, len(uvs))
				for i, v := range uvs {
					data.UVs[i] = mgl32.Vec2(v)
				}
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: indices: %w", mesh.Name, err)
				}
				data.Indices = indices
			} else {
				data.Indices = make([]uint32, len(data.Positions))
				for i := range data.Indices {
					data.Indices[i] = uint32(i)
				}
			}

			part := meshPart{data: data}

			if prim.Material != nil {
				material := doc.Materials[*prim.Material]
				if pbr := material.PBRMetallicRoughness; pbr != nil {
					color := pbr.BaseColorFactorOrDefault()
					part.baseColor = NewColor(float32(color[0]), float32(color[1]), float32(color[2]), float32(color[3]))
					if texture := pbr.BaseColorTexture; texture != nil {
						if source := doc.Textures[texture.Index].Source; source != nil {
							image := doc.Images[*source]
							if image.URI != "" && !image.IsEmbeddedResource() {
								part.albedo = filepath.Join(dir, image.URI)
							}
						}
					}
				}
			}

			parts = append(parts, part)

		}

	}

	return parts, nil

}
