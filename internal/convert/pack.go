package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	appLog "github.com/techtech0521/schedule-timeline/internal/log"
)

// EPD panel geometry (12.48" B, tri-color), landscape.
const (
	EPDWidth      = 1304
	EPDHeight     = 984
	EPDByteStride = EPDWidth / 8 // 163 bytes per row
	EPDPlaneSize  = EPDByteStride * EPDHeight
)

// DecodeNRGBA decodes a PNG screenshot into an NRGBA image.
func DecodeNRGBA(data []byte) (*image.NRGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: decode png: %w", err)
	}
	if n, ok := img.(*image.NRGBA); ok {
		return n, nil
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}

// Orient returns img in panel orientation. A portrait capture (EPDHeight
// wide, at least EPDWidth tall) is rotated 90° clockwise; anything else is
// returned as-is. A capture taller than the panel keeps its top rows, so the
// header and the earliest events always make it onto the panel.
func Orient(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() != EPDHeight || b.Dy() < EPDWidth {
		return img
	}
	warnDropped("portrait capture", b.Dy(), EPDWidth)

	out := image.NewNRGBA(image.Rect(0, 0, EPDWidth, EPDHeight))
	for y := 0; y < EPDWidth; y++ {
		src := img.Pix[y*img.Stride:]
		for x := 0; x < EPDHeight; x++ {
			// (x, y) in portrait -> (EPDWidth-1-y, x) in landscape.
			d := x*out.Stride + (EPDWidth-1-y)*4
			copy(out.Pix[d:d+4], src[x*4:x*4+4])
		}
	}
	return out
}

// PackNRGBA converts img into packed 1bpp black and red planes for the
// panel.
//
//   - img width must be EPDWidth; height at least EPDHeight (taller input
//     keeps its top EPDHeight rows).
//   - Planes are y-major, MSB first: byte y*163 + x>>3, mask 0x80>>(x&7).
//   - Bits start at 1 (white); an inked pixel clears its bit.
func PackNRGBA(img *image.NRGBA) (black, red []byte, err error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if w != EPDWidth {
		return nil, nil, fmt.Errorf("convert: expected width %d, got %d", EPDWidth, w)
	}
	if h < EPDHeight {
		return nil, nil, fmt.Errorf("convert: expected height >= %d, got %d", EPDHeight, h)
	}

	warnDropped("landscape image", h, EPDHeight)

	black = bytes.Repeat([]byte{0xFF}, EPDPlaneSize)
	red = bytes.Repeat([]byte{0xFF}, EPDPlaneSize)

	for py := 0; py < EPDHeight; py++ {
		row := img.Pix[py*img.Stride:]
		for px := 0; px < EPDWidth; px++ {
			p := row[px*4 : px*4+4]
			if p[3] < 128 {
				continue
			}

			ink := classifyPixel(color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
			if ink == inkWhite {
				continue
			}

			i := py*EPDByteStride + (px >> 3)
			mask := byte(0x80 >> (px & 7))
			switch ink {
			case inkBlack:
				black[i] &^= mask
			case inkRed:
				red[i] &^= mask
			}
		}
	}

	return black, red, nil
}

func warnDropped(what string, have, keep int) {
	if have > keep {
		appLog.Warn("content does not fit the panel; bottom rows dropped",
			"image", what, "height", have, "kept", keep, "dropped", have-keep)
	}
}

type inkColor int

const (
	inkWhite inkColor = iota
	inkBlack
	inkRed
)

// classifyPixel maps a pixel onto the panel's three inks.
//
//   - luma Y = 0.299R + 0.587G + 0.114B
//   - Y < 64 -> black
//   - R > 128 and R - max(G, B) > 32 -> red (the red timeline node)
//   - saturated cool colors, max(G, B) - R > 64 -> black (the blue node has
//     no ink of its own)
//   - else white
func classifyPixel(c color.NRGBA) inkColor {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)

	y := 0.299*r + 0.587*g + 0.114*b
	maxGB := max(g, b)

	switch {
	case y < 64:
		return inkBlack
	case r > 128 && r-maxGB > 32:
		return inkRed
	case maxGB-r > 64:
		return inkBlack
	default:
		return inkWhite
	}
}
