package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var (
	nodeBlue = color.NRGBA{R: 0x00, G: 0xa8, B: 0xcc, A: 0xff}
	nodeRed  = color.NRGBA{R: 0xe6, G: 0x00, B: 0x00, A: 0xff}
	white    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func TestClassifyPixel(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want inkColor
	}{
		{"white", white, inkWhite},
		{"black", color.NRGBA{A: 0xff}, inkBlack},
		{"red node", nodeRed, inkRed},
		{"blue node", nodeBlue, inkBlack},
		{"light gray", color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}, inkWhite},
	}
	for _, tt := range tests {
		if got := classifyPixel(tt.c); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func fill(img *image.NRGBA, c color.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

func TestPackNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, EPDWidth, EPDHeight))
	fill(img, white)
	img.SetNRGBA(0, 0, nodeRed)
	img.SetNRGBA(9, 1, nodeBlue)

	black, red, err := PackNRGBA(img)
	if err != nil {
		t.Fatalf("PackNRGBA() = %v", err)
	}
	if len(black) != EPDPlaneSize || len(red) != EPDPlaneSize {
		t.Fatalf("plane sizes %d/%d", len(black), len(red))
	}
	if red[0] != 0x7F {
		t.Errorf("red[0] = %#x, want 0x7f", red[0])
	}
	if got := black[EPDByteStride+1]; got != 0xBF {
		t.Errorf("black pixel byte = %#x, want 0xbf", got)
	}
	if black[0] != 0xFF {
		t.Errorf("black[0] = %#x, want untouched", black[0])
	}
}

func TestPackNRGBARejectsBadSize(t *testing.T) {
	if _, _, err := PackNRGBA(image.NewNRGBA(image.Rect(0, 0, 100, EPDHeight))); err == nil {
		t.Error("wrong width accepted")
	}
	if _, _, err := PackNRGBA(image.NewNRGBA(image.Rect(0, 0, EPDWidth, 10))); err == nil {
		t.Error("short height accepted")
	}
}

func TestOrientRotatesPortrait(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, EPDHeight, EPDWidth))
	fill(img, white)
	img.SetNRGBA(0, 0, nodeRed) // top-left of portrait

	out := Orient(img)
	if b := out.Bounds(); b.Dx() != EPDWidth || b.Dy() != EPDHeight {
		t.Fatalf("bounds = %v", b)
	}
	// Clockwise rotation puts it top-right.
	if got := out.NRGBAAt(EPDWidth-1, 0); got != nodeRed {
		t.Errorf("rotated pixel = %v", got)
	}

	landscape := image.NewNRGBA(image.Rect(0, 0, EPDWidth, EPDHeight))
	if Orient(landscape) != landscape {
		t.Error("landscape image should pass through")
	}
}

func TestDecodeNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, nodeRed)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeNRGBA(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeNRGBA() = %v", err)
	}
	if got := img.NRGBAAt(1, 1); got != nodeRed {
		t.Errorf("pixel = %v", got)
	}
	if _, err := DecodeNRGBA([]byte("not png")); err == nil {
		t.Error("garbage accepted")
	}
}

func TestTallPortraitKeepsTop(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, EPDHeight, 2000))
	fill(img, white)
	for x := 0; x < EPDHeight; x++ {
		img.SetNRGBA(x, 10, nodeRed)   // header area
		img.SetNRGBA(x, 1900, nodeRed) // below the panel
	}

	_, red, err := PackNRGBA(Orient(img))
	if err != nil {
		t.Fatalf("PackNRGBA() = %v", err)
	}

	// Portrait row 10 lands in landscape column EPDWidth-1-10.
	col := EPDWidth - 1 - 10
	inked, total := 0, 0
	for py := 0; py < EPDHeight; py++ {
		for px := 0; px < EPDWidth; px++ {
			if red[py*EPDByteStride+px>>3]&(0x80>>(px&7)) != 0 {
				continue
			}
			total++
			if px == col {
				inked++
			}
		}
	}
	if inked != EPDHeight {
		t.Errorf("top row reached the panel in %d of %d pixels", inked, EPDHeight)
	}
	if total != EPDHeight {
		t.Errorf("red pixels = %d, want only the top row's %d", total, EPDHeight)
	}
}

func TestPackNRGBATallKeepsTop(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, EPDWidth, EPDHeight+200))
	fill(img, white)
	img.SetNRGBA(0, 0, nodeRed)

	_, red, err := PackNRGBA(img)
	if err != nil {
		t.Fatal(err)
	}
	if red[0] != 0x7F {
		t.Errorf("red[0] = %#x, want top-left pixel kept", red[0])
	}
}
