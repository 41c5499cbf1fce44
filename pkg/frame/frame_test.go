package frame

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestNew_ClampsDuration(t *testing.T) {
	f := New(solid(2, 2, color.RGBA{A: 255}), time.Millisecond)
	if f.Duration != MinDuration {
		t.Errorf("expected %v, got %v", MinDuration, f.Duration)
	}
	if got := f.WithDuration(0).Duration; got != MinDuration {
		t.Errorf("WithDuration: expected %v, got %v", MinDuration, got)
	}
}

func TestTotalDuration(t *testing.T) {
	img := solid(1, 1, color.RGBA{})
	frames := []Frame{New(img, 100*time.Millisecond), New(img, 250*time.Millisecond)}
	if got := TotalDuration(frames); got != 350*time.Millisecond {
		t.Errorf("expected 350ms, got %v", got)
	}
}

func TestFingerprint(t *testing.T) {
	a := solid(40, 30, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	b := solid(40, 30, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("identical bitmaps should share a fingerprint")
	}

	p := SamplePoints(40, 30)[2]
	b.SetRGBA(p.X, p.Y, color.RGBA{R: 200, A: 255})
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("a change at a sample point should change the fingerprint")
	}

	c := solid(30, 40, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("different sizes should not share a fingerprint")
	}
}

func TestSampleDifference(t *testing.T) {
	a := solid(20, 20, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	b := solid(20, 20, color.RGBA{R: 110, G: 90, B: 100, A: 255})

	if d := SampleDifference(a, a); d != 0 {
		t.Errorf("expected 0 for identical bitmaps, got %f", d)
	}
	// (10 + 10 + 0 + 0) / 4 per point
	if d := SampleDifference(a, b); d != 5 {
		t.Errorf("expected 5, got %f", d)
	}
	if d := SampleDifference(a, solid(10, 10, color.RGBA{})); d != 255 {
		t.Errorf("expected 255 for size mismatch, got %f", d)
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    Rect
		wantErr bool
	}{
		{"10,20,300,200", Rect{10, 20, 300, 200}, false},
		{" 0, 0, 5, 5 ", Rect{0, 0, 5, 5}, false},
		{"1,2,3", Rect{}, true},
		{"a,b,c,d", Rect{}, true},
		{"0,0,0,10", Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRect_ClampTo(t *testing.T) {
	r := Rect{X: -10, Y: 5, Width: 50, Height: 100}
	got := r.ClampTo(image.Rect(0, 0, 30, 40))
	want := Rect{X: 0, Y: 5, Width: 30, Height: 35}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if !(Rect{X: 100, Y: 100, Width: 5, Height: 5}).ClampTo(image.Rect(0, 0, 10, 10)).Empty() {
		t.Error("disjoint rectangle should clamp to empty")
	}
}

func TestDownscale(t *testing.T) {
	img := solid(100, 60, color.RGBA{R: 255, A: 255})
	got := Downscale(img, 2)
	if got.Bounds().Dx() != 50 || got.Bounds().Dy() != 30 {
		t.Errorf("expected 50x30, got %v", got.Bounds())
	}
	if Downscale(img, 1) != img {
		t.Error("factor 1 should return the input")
	}
}

func TestFitWidth(t *testing.T) {
	img := solid(200, 100, color.RGBA{G: 255, A: 255})
	got := FitWidth(img, 100)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 50 {
		t.Errorf("expected 100x50, got %v", got.Bounds())
	}
	if FitWidth(img, 0) != img || FitWidth(img, 400) != img {
		t.Error("no-op widths should return the input")
	}
}

func TestCrop(t *testing.T) {
	img := solid(10, 10, color.RGBA{B: 255, A: 255})
	got := Crop(img, image.Rect(2, 3, 7, 9))
	if got.Bounds() != image.Rect(0, 0, 5, 6) {
		t.Errorf("expected origin-based 5x6, got %v", got.Bounds())
	}
	if got.RGBAAt(0, 0).B != 255 {
		t.Error("cropped pixels should be copied")
	}
}
