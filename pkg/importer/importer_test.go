package importer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/ports"
)

var palette = color.Palette{color.Transparent, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}}

func paletted(r image.Rectangle, idx uint8) *image.Paletted {
	img := image.NewPaletted(r, palette)
	for i := range img.Pix {
		img.Pix[i] = idx
	}
	return img
}

func encodeGIF(t *testing.T, g *gif.GIF) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll failed: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_GIF(t *testing.T) {
	g := &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 4, 4), 1),
			paletted(image.Rect(2, 2, 4, 4), 2),
		},
		Delay:     []int{5, 0},
		Disposal:  []byte{gif.DisposalNone, gif.DisposalNone},
		LoopCount: 2,
		Config:    image.Config{Width: 4, Height: 4},
	}

	res, err := Decode(encodeGIF(t, g))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Format != "gif" || len(res.Frames) != 2 {
		t.Fatalf("format %s, %d frames", res.Format, len(res.Frames))
	}
	if res.Frames[0].Duration != 50*time.Millisecond {
		t.Errorf("first delay = %v", res.Frames[0].Duration)
	}
	if res.Frames[1].Duration != defaultGIFDelay {
		t.Errorf("zero delay should become %v, got %v", defaultGIFDelay, res.Frames[1].Duration)
	}
	if res.LoopCount != 3 {
		t.Errorf("LoopCount = %d, want 3 plays", res.LoopCount)
	}

	// The second frame is composited over the first.
	second := res.Frames[1].Image
	if second.Bounds().Dx() != 4 {
		t.Fatalf("second frame width %d, want full canvas", second.Bounds().Dx())
	}
	if got := second.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("pixel outside the sub-image = %v, want red from frame 1", got)
	}
	if got := second.RGBAAt(3, 3); got.B != 255 {
		t.Errorf("pixel inside the sub-image = %v, want blue", got)
	}
}

func TestDecode_GIFDisposalPrevious(t *testing.T) {
	g := &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 2, 2), 1),
			paletted(image.Rect(0, 0, 1, 1), 2),
			paletted(image.Rect(1, 1, 2, 2), 2),
		},
		Delay:    []int{10, 10, 10},
		Disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
		Config:   image.Config{Width: 2, Height: 2},
	}

	res, err := Decode(encodeGIF(t, g))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	third := res.Frames[2].Image
	if got := third.RGBAAt(0, 0); got.R != 255 || got.B != 0 {
		t.Errorf("restored pixel = %v, want red", got)
	}
}

func TestDecode_PNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	res, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Format != "png" || len(res.Frames) != 1 {
		t.Fatalf("format %s, %d frames", res.Format, len(res.Frames))
	}
	if res.Frames[0].Duration != StillDuration {
		t.Errorf("duration = %v, want %v", res.Frames[0].Duration, StillDuration)
	}
	if res.Frames[0].Width() != 3 || res.Frames[0].Height() != 2 {
		t.Errorf("size %dx%d", res.Frames[0].Width(), res.Frames[0].Height())
	}
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	if !errors.Is(err, ports.ErrUnsupportedInputFormat) {
		t.Errorf("err = %v, want ErrUnsupportedInputFormat", err)
	}
}

func TestLoopCount(t *testing.T) {
	tests := []struct{ gif, want int }{
		{0, 0},
		{-1, 1},
		{1, 2},
	}
	for _, tt := range tests {
		if got := loopCount(tt.gif); got != tt.want {
			t.Errorf("loopCount(%d) = %d, want %d", tt.gif, got, tt.want)
		}
	}
}
