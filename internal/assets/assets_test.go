package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/bmp"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
f 1/1 3/3 2/2
`

// Two triangles share the 1-3 and 1-2 edges by position, but the second
// triangle samples corner 1 from a different texture coordinate.
const seamOBJ = `# uv seam
o seam
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vt 0.5 0.5
f 1/1 2/2 3/3
f 1/4 3/3 2/2
`

const quadMTL = `newmtl white
Kd 1 1 1
`

func writeFile(c *qt.C, dir, name string, data []byte) string {
	path := filepath.Join(dir, name)
	c.Assert(os.WriteFile(path, data, 0o644), qt.IsNil)
	return path
}

func writeQuad(c *qt.C, dir string) (string, string) {
	return writeFile(c, dir, "quad.obj", []byte(quadOBJ)), writeFile(c, dir, "quad.mtl", []byte(quadMTL))
}

func writePNG(c *qt.C, dir string, img image.Image) string {
	path := filepath.Join(dir, "texture.png")
	file, err := os.Create(path)
	c.Assert(err, qt.IsNil)
	defer file.Close()
	c.Assert(png.Encode(file, img), qt.IsNil)
	return path
}

func TestLoadMeshTriangulatesAndDedupes(t *testing.T) {
	c := qt.New(t)
	objPath, mtlPath := writeQuad(c, c.TempDir())

	mesh, err := LoadMesh(objPath, mtlPath)
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 4)
	c.Assert(mesh.Indices, qt.DeepEquals, []uint32{0, 1, 2, 0, 2, 3, 0, 2, 1})

	c.Assert(mesh.Vertices[2].Position, qt.Equals, mgl32.Vec3{1, 1, 0})
	c.Assert(mesh.Vertices[2].Color, qt.Equals, mgl32.Vec3{1, 1, 1})
	// V is flipped into Vulkan's top-left texture origin.
	c.Assert(mesh.Vertices[2].TexCoord, qt.Equals, mgl32.Vec2{1, 0})
	c.Assert(mesh.Vertices[0].TexCoord, qt.Equals, mgl32.Vec2{0, 1})
}

func TestLoadMeshSplitsUVSeams(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	objPath := writeFile(c, dir, "seam.obj", []byte(seamOBJ))
	mtlPath := writeFile(c, dir, "seam.mtl", []byte(quadMTL))

	mesh, err := LoadMesh(objPath, mtlPath)
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 4)
	c.Assert(mesh.Indices, qt.DeepEquals, []uint32{0, 1, 2, 3, 2, 1})

	c.Assert(mesh.Vertices[3].Position, qt.Equals, mesh.Vertices[0].Position)
	c.Assert(mesh.Vertices[3].TexCoord, qt.Equals, mgl32.Vec2{0.5, 0.5})
	c.Assert(mesh.Vertices[0].TexCoord, qt.Equals, mgl32.Vec2{0, 1})
}

func TestLoadMeshMissingFiles(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	objPath, _ := writeQuad(c, dir)

	_, err := LoadMesh(filepath.Join(dir, "nope.obj"), filepath.Join(dir, "quad.mtl"))
	c.Assert(err, qt.ErrorMatches, "open mesh: .*")

	_, err = LoadMesh(objPath, filepath.Join(dir, "nope.mtl"))
	c.Assert(err, qt.ErrorMatches, "open material: .*")
}

func TestLoadTexture(t *testing.T) {
	c := qt.New(t)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: uint8(x * 10), G: 1, B: 2, A: 255})
		img.SetNRGBA(x, 1, color.NRGBA{R: 3, G: uint8(x * 20), B: 4, A: 128})
	}
	path := writePNG(c, c.TempDir(), img)

	texture, err := LoadTexture(path)
	c.Assert(err, qt.IsNil)
	c.Assert(texture.Width, qt.Equals, 4)
	c.Assert(texture.Height, qt.Equals, 2)
	c.Assert(texture.MipLevels, qt.Equals, 3)
	c.Assert(texture.Pixels, qt.DeepEquals, img.Pix)
}

func TestLoadTextureBMP(t *testing.T) {
	c := qt.New(t)
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for i := 0; i < 9; i++ {
		img.SetNRGBA(i%3, i/3, color.NRGBA{R: uint8(i * 25), G: 7, B: uint8(255 - i), A: 255})
	}

	path := filepath.Join(c.TempDir(), "texture.bmp")
	file, err := os.Create(path)
	c.Assert(err, qt.IsNil)
	c.Assert(bmp.Encode(file, img), qt.IsNil)
	c.Assert(file.Close(), qt.IsNil)

	texture, err := LoadTexture(path)
	c.Assert(err, qt.IsNil)
	c.Assert(texture.Width, qt.Equals, 3)
	c.Assert(texture.MipLevels, qt.Equals, 2)
	c.Assert(texture.Pixels, qt.DeepEquals, img.Pix)
}

func TestLoadTextureRejectsUnknownFormat(t *testing.T) {
	c := qt.New(t)
	path := writeFile(c, c.TempDir(), "texture.png", []byte("definitely not an image"))

	_, err := LoadTexture(path)
	c.Assert(err, qt.ErrorMatches, "decode texture .*texture.png: image: unknown format")
}

func TestNewTextureConvertsSubImage(t *testing.T) {
	c := qt.New(t)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(5, 6, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	sub := img.SubImage(image.Rect(4, 4, 8, 8))

	texture := NewTexture(sub)
	c.Assert(texture.Width, qt.Equals, 4)
	c.Assert(texture.Height, qt.Equals, 4)
	c.Assert(texture.Pixels, qt.HasLen, 4*4*4)

	offset := (2*4 + 1) * 4
	c.Assert(texture.Pixels[offset:offset+4], qt.DeepEquals, []byte{200, 100, 50, 255})
}

func TestMipLevels(t *testing.T) {
	c := qt.New(t)
	c.Assert(MipLevels(1, 1), qt.Equals, 1)
	c.Assert(MipLevels(0, 0), qt.Equals, 1)
	c.Assert(MipLevels(4, 2), qt.Equals, 3)
	c.Assert(MipLevels(512, 512), qt.Equals, 10)
	c.Assert(MipLevels(1024, 768), qt.Equals, 11)
	c.Assert(MipLevels(300, 1000), qt.Equals, 10)
}

func TestLoadScene(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	objPath, mtlPath := writeQuad(c, dir)
	texturePath := writePNG(c, dir, image.NewNRGBA(image.Rect(0, 0, 16, 16)))

	scene, err := Load(context.Background(), Paths{
		Model:    objPath,
		Material: mtlPath,
		Texture:  texturePath,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(scene.Mesh.Indices, qt.HasLen, 9)
	c.Assert(scene.Texture.MipLevels, qt.Equals, 5)

	_, err = Load(context.Background(), Paths{
		Model:    objPath,
		Material: mtlPath,
		Texture:  filepath.Join(dir, "missing.png"),
	})
	c.Assert(err, qt.ErrorMatches, "open texture: .*")
}
