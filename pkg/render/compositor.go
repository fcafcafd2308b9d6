package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font/basicfont"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
)

// Compositor renders per-element overlays and text onto frame buffers.
// It holds no cross-frame state; each frame starts from a fresh copy
// of the base diagram image.
type Compositor struct {
	DrawLabels bool
}

// NewFrame returns a mutable RGBA copy of the base diagram image.
func NewFrame(base image.Image) *image.RGBA {
	b := base.Bounds()
	frame := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(frame, frame.Bounds(), base, b.Min, draw.Src)
	return frame
}

// DrawOverlay composites one graphic element's interpolated color onto
// the frame as a padded, blurred, alpha-masked patch centered on the
// shape's original center, so scaling grows the overlay around the
// shape rather than its top-left corner.
func (c *Compositor) DrawOverlay(frame *image.RGBA, elem model.GraphicElement, params model.RenderParams, entities []model.Entity, col model.RGB) {
	pad := 2 * params.Blur
	scaledW := int(math.Round(float64(elem.Box.Width()) * params.Scale))
	scaledH := int(math.Round(float64(elem.Box.Height()) * params.Scale))
	if scaledW <= 0 || scaledH <= 0 {
		return
	}
	w := scaledW + 2*pad
	h := scaledH + 2*pad

	mask := shapeMask(elem.Kind, w, h, pad, scaledW, scaledH)
	if params.Blur > 0 {
		mask = imaging.Blur(mask, float64(params.Blur))
	}

	// Invert the mask and attenuate by the transparency knob: full
	// requested opacity inside the shape fading to zero outside.
	opacity := 1 - float64(params.Transparency)/255
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mv, _, _, _ := mask.At(x, y).RGBA()
			alpha := float64(255-(mv>>8)) * opacity
			i := canvas.PixOffset(x, y)
			canvas.Pix[i+0] = col.R
			canvas.Pix[i+1] = col.G
			canvas.Pix[i+2] = col.B
			canvas.Pix[i+3] = uint8(alpha)
		}
	}

	cx, cy := elem.Box.Center()
	x0 := int(math.Round(cx)) - w/2
	y0 := int(math.Round(cy)) - h/2
	draw.Draw(frame, image.Rect(x0, y0, x0+w, y0+h), canvas, image.Point{}, draw.Over)

	if c.DrawLabels && len(entities) > 0 {
		drawLabel(frame, elem, entities)
	}
}

// shapeMask draws the element's shape in "fully opaque intent" (0)
// over a "fully transparent intent" (255) background, inside the
// padded region.
func shapeMask(kind model.ShapeKind, w, h, pad, scaledW, scaledH int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	switch kind {
	case model.ShapeCircle:
		dc.DrawEllipse(float64(w)/2, float64(h)/2, float64(scaledW)/2, float64(scaledH)/2)
	default:
		dc.DrawRectangle(float64(pad), float64(pad), float64(scaledW), float64(scaledH))
	}
	dc.Fill()
	return dc.Image()
}

// drawLabel renders the space-joined entity identifiers centered in
// the shape's bounding box over a translucent plate for legibility.
func drawLabel(frame *image.RGBA, elem model.GraphicElement, entities []model.Entity) {
	ids := make([]string, len(entities))
	for i, ent := range entities {
		ids[i] = ent.ID
	}
	label := strings.Join(ids, " ")

	dc := gg.NewContextForRGBA(frame)
	dc.SetFontFace(basicfont.Face7x13)
	tw, th := dc.MeasureString(label)
	cx, cy := elem.Box.Center()

	dc.SetRGBA(1, 1, 1, 0.65)
	dc.DrawRectangle(cx-tw/2-2, cy-th/2-1, tw+4, th+2)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(label, cx, cy, 0.5, 0.35)
}

// DrawCounter renders the fixed-position "Timepoint N of T" label in
// the frame's lower-right corner. N is 1-based for display.
func DrawCounter(frame *image.RGBA, n, total int) {
	text := fmt.Sprintf("Timepoint %d of %d", n, total)

	dc := gg.NewContextForRGBA(frame)
	dc.SetFontFace(basicfont.Face7x13)
	tw, th := dc.MeasureString(text)
	b := frame.Bounds()
	x := float64(b.Max.X) - tw - 8
	y := float64(b.Max.Y) - 8

	dc.SetRGBA(1, 1, 1, 0.65)
	dc.DrawRectangle(x-3, y-th, tw+6, th+4)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(text, x, y, 0, 0)
}
