package pipeline

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	errors "github.com/Laisky/errors/v2"
	_ "golang.org/x/image/bmp"
)

// formatClass buckets a supported extension into one of the four converter
// families spec §4.4 step 3 dispatches on.
type formatClass int

const (
	classMesh formatClass = iota
	classImage
	classVector
	classCAD
	classUnsupported
)

var classByExtension = map[string]formatClass{
	".stl": classMesh,
	".obj": classMesh, ".3mf": classMesh, ".ply": classMesh,
	".png": classImage, ".jpg": classImage, ".jpeg": classImage, ".bmp": classImage,
	".dxf": classVector, ".svg": classVector, ".eps": classVector, ".pdf": classVector,
	".stp": classCAD, ".step": classCAD, ".igs": classCAD, ".iges": classCAD,
}

func classify(ext string) formatClass {
	if c, ok := classByExtension[strings.ToLower(ext)]; ok {
		return c
	}
	return classUnsupported
}

// ErrInvalidSourceGeometry is the classification for converter failures that
// indicate bad source data rather than an internal fault.
var ErrInvalidSourceGeometry = errors.New("invalid source geometry")

// validateRasterImage decodes just enough of an uploaded raster image to
// confirm it is well-formed before handing it to the image-to-mesh
// converter, reusing golang.org/x/image's bmp decoder (repointed here from
// the teacher's avatar-processing use) alongside the stdlib png/jpeg
// decoders registered via blank import.
func validateRasterImage(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read uploaded image")
	}
	if len(data) == 0 {
		return errors.Wrapf(ErrInvalidSourceGeometry, "uploaded image %s is empty", path)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(ErrInvalidSourceGeometry, "uploaded image %s is not a decodable image: %v", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Wrapf(ErrInvalidSourceGeometry, "uploaded image %s has zero dimensions", path)
	}

	return nil
}
