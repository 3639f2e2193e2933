package assets

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Paths struct {
	Model    string
	Material string
	Texture  string
}

type Scene struct {
	Mesh    *Mesh
	Texture *Texture
}

// Load decodes the mesh and texture concurrently. Both are plain CPU work, so
// nothing here touches the device.
func Load(ctx context.Context, paths Paths) (*Scene, error) {
	scene := &Scene{}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		mesh, err := LoadMesh(paths.Model, paths.Material)
		if err != nil {
			return err
		}
		scene.Mesh = mesh
		return nil
	})

	group.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		texture, err := LoadTexture(paths.Texture)
		if err != nil {
			return err
		}
		scene.Texture = texture
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return scene, nil
}
