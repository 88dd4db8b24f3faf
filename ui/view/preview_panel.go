package view

import (
	"image"

	"github.com/soocke/barcode-tracker-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PreviewPanel shows the composed camera preview.
type PreviewPanel interface {
	ShowPreview(img image.Image)
	PreviewBounds() (w, h int)
	Reset()
}

type previewPanel struct {
	label     *LabelWidget
	maxW      int
	maxH      int
	prevPhoto *Img // last Tk photo, deleted before it is replaced
}

// NewPreviewPanel creates the preview label spanning columns 0-3 of row and
// returns the view. Frames are shown at most maxW x maxH.
func NewPreviewPanel(row, maxW, maxH int) PreviewPanel {
	maxW, maxH = max(maxW, 50), max(maxH, 50)
	photo := NewPhoto(Data(placeholderPNG(maxW, maxH)))
	lbl := Label(Image(photo), Borderwidth(1), Relief("sunken"))
	Grid(lbl, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return &previewPanel{label: lbl, maxW: maxW, maxH: maxH, prevPhoto: photo}
}

func placeholderPNG(w, h int) []byte {
	pw, ph := images.FitSize(w, h, 320, 240)
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, pw, ph)))
}

func (v *previewPanel) PreviewBounds() (int, int) {
	if v == nil {
		return 0, 0
	}
	return v.maxW, v.maxH
}

func (v *previewPanel) ShowPreview(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	v.replace(images.EncodePNG(img))
}

func (v *previewPanel) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.replace(placeholderPNG(v.maxW, v.maxH))
}

func (v *previewPanel) replace(pngBytes []byte) {
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}
