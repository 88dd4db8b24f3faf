package app

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/soocke/barcode-tracker-go/config"
	"github.com/soocke/barcode-tracker-go/device/synthetic"
	"github.com/soocke/barcode-tracker-go/domain/engine/template"
)

// loadTemplates decodes the configured template images. With none
// configured it renders the synthetic targets at the size they appear in
// frames of the requested height.
func loadTemplates(cfg *config.Config) ([]template.Template, error) {
	if len(cfg.Templates) == 0 {
		return syntheticTemplates(synthetic.DefaultTargets(), cfg.Height), nil
	}
	out := make([]template.Template, 0, len(cfg.Templates))
	for _, tc := range cfg.Templates {
		img, err := decodeImage(tc.Path)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", tc.ID, err)
		}
		out = append(out, template.Template{ID: tc.ID, Label: tc.Label, Image: img})
	}
	return out, nil
}

func syntheticTemplates(targets []synthetic.Target, frameH int) []template.Template {
	out := make([]template.Template, 0, len(targets))
	for i, t := range targets {
		side := max(int(t.Size*float64(frameH)), 8)
		out = append(out, template.Template{ID: i, Label: t.Label, Image: synthetic.Pattern(t, side)})
	}
	return out
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
