package deck

import (
	"image"

	"pptgen/app/internal/outline"
	"pptgen/app/internal/pptx"
)

// Two-column geometry used when a slide carries a picture.
var (
	columnTop     = pptx.Inches(2)
	textColumn    = pptx.Inches(5)
	textHeight    = pptx.Inches(4.5)
	columnGap     = pptx.Inches(0.5)
	pictureColumn = pptx.Inches(4)
)

// RenderedSlide is the per-slide layout decision. It lives only while its slide is assembled.
type RenderedSlide struct {
	Spec    outline.SlideSpec
	Body    pptx.Rect
	Picture pptx.Rect
	Image   image.Image
}

// HasImage reports whether the slide is laid out in two columns.
func (r RenderedSlide) HasImage() bool {
	return r.Image != nil
}

// Render computes the layout for spec. A nil img yields the full-width text layout.
func Render(spec outline.SlideSpec, img image.Image) RenderedSlide {
	rendered := RenderedSlide{Spec: spec, Body: pptx.BodyFrame}
	if img == nil {
		return rendered
	}

	rendered.Image = img
	rendered.Body = pptx.Rect{
		Left:   pptx.BodyFrame.Left,
		Top:    columnTop,
		Width:  textColumn,
		Height: textHeight,
	}
	rendered.Picture = pptx.Rect{
		Left:   rendered.Body.Left + textColumn + columnGap,
		Top:    columnTop,
		Width:  pictureColumn,
		Height: pictureBound(img),
	}
	return rendered
}

// pictureBound is the height the picture takes at the column width.
func pictureBound(img image.Image) pptx.EMU {
	bounds := img.Bounds()
	if bounds.Dx() == 0 {
		return 0
	}
	return pptx.EMU(int64(pictureColumn) * int64(bounds.Dy()) / int64(bounds.Dx()))
}
