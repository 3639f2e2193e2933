package assets

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// LoadMesh decodes an OBJ file and its material library into a deduplicated,
// triangulated index list.
func LoadMesh(objPath, mtlPath string) (*Mesh, error) {
	meshFile, err := os.Open(objPath)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh")
	}
	defer meshFile.Close()

	matFile, err := os.Open(mtlPath)
	if err != nil {
		return nil, errors.Wrap(err, "open material")
	}
	defer matFile.Close()

	decoder, err := obj.DecodeReader(meshFile, matFile)
	if err != nil {
		return nil, errors.Wrapf(err, "decode mesh %s", objPath)
	}

	return buildMesh(decoder)
}

// vertexKey identifies an OBJ face corner. Corners sharing a position but
// not a texture coordinate, as on a UV seam, become separate vertices.
type vertexKey struct {
	position int
	uv       int
}

func buildMesh(decoder *obj.Decoder) (*Mesh, error) {
	mesh := &Mesh{}
	uniqueVertices := make(map[vertexKey]uint32)

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			if len(face.Vertices) < 3 {
				return nil, errors.Errorf("object %s: face with %d vertices", decodedObj.Name, len(face.Vertices))
			}

			// Faces are fans around their first vertex.
			for i := 2; i < len(face.Vertices); i++ {
				mesh.addVertex(decoder, uniqueVertices, face, 0)
				mesh.addVertex(decoder, uniqueVertices, face, i-1)
				mesh.addVertex(decoder, uniqueVertices, face, i)
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return nil, errors.New("mesh has no faces")
	}

	return mesh, nil
}

func (m *Mesh) addVertex(decoder *obj.Decoder, uniqueVertices map[vertexKey]uint32, face obj.Face, faceIndex int) {
	vertInd := face.Vertices[faceIndex]
	uvInd := -1
	if faceIndex < len(face.Uvs) && face.Uvs[faceIndex] >= 0 && face.Uvs[faceIndex]*2+1 < len(decoder.Uvs) {
		uvInd = face.Uvs[faceIndex]
	}

	key := vertexKey{position: vertInd, uv: uvInd}
	index, vertexExists := uniqueVertices[key]

	if !vertexExists {
		vert := Vertex{
			Position: mgl32.Vec3{
				decoder.Vertices[vertInd*3],
				decoder.Vertices[vertInd*3+1],
				decoder.Vertices[vertInd*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}

		if uvInd >= 0 {
			vert.TexCoord = mgl32.Vec2{
				decoder.Uvs[uvInd*2],
				1.0 - decoder.Uvs[uvInd*2+1],
			}
		}

		index = uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, vert)
		uniqueVertices[key] = index
	}

	m.Indices = append(m.Indices, index)
}
