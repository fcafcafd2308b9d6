package anim_test

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/anim"
)

func solidFrames(n int, w, h int) []*image.RGBA {
	frames := make([]*image.RGBA, n)
	for i := range frames {
		frame := image.NewRGBA(image.Rect(0, 0, w, h))
		shade := uint8(i * 255 / max(n-1, 1))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				frame.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
			}
		}
		frames[i] = frame
	}
	return frames
}

func TestWriteGIF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := anim.WriteGIF(solidFrames(4, 20, 10), 2, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 4 {
		t.Errorf("expected 4 encoded frames, got %d", len(g.Image))
	}
	// 2 fps -> 50cs per frame.
	for i, d := range g.Delay {
		if d != 50 {
			t.Errorf("frame %d delay = %dcs, want 50", i, d)
		}
	}
}

func TestWriteGIF_FastCadenceFloorsDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := anim.WriteGIF(solidFrames(2, 8, 8), 200, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if g.Delay[0] != 1 {
		t.Errorf("expected minimum 1cs delay, got %d", g.Delay[0])
	}
}

func TestWriteGIF_NoPartialOutputOnEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := anim.WriteGIF(nil, 10, path); err == nil {
		t.Fatal("expected error for empty frame list")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no output file may exist after a failed encode")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("no temporary file may be left behind")
	}
}

func TestWriteGIF_RejectsBadFPS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := anim.WriteGIF(solidFrames(1, 8, 8), 0, path); err == nil {
		t.Fatal("expected error for zero fps")
	}
}

func TestWritePNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	if err := anim.WritePNGSequence(solidFrames(3, 16, 9), dir); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, "frame-0000"+string(rune('0'+i))+".png")
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("missing frame file: %v", err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("frame %d does not decode: %v", i, err)
		}
		if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 9 {
			t.Errorf("frame %d has wrong dimensions: %v", i, img.Bounds())
		}
	}
}
