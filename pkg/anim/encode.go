package anim

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/metrics"
)

// WriteGIF encodes the frame sequence as an animated GIF at the given
// frame rate. Frames are quantized with Floyd-Steinberg dithering and
// submitted strictly in order. The file is written to a temporary path
// and renamed on success so an aborted run never leaves a partial
// output behind.
func WriteGIF(frames []*image.RGBA, fps int, path string) error {
	defer metrics.Timer(metrics.Encode)()

	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	// GIF delays are in centiseconds; sub-centisecond cadences floor
	// to the fastest representable delay.
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}

	out := &gif.GIF{
		Image:    make([]*image.Paletted, 0, len(frames)),
		Delay:    make([]int, 0, len(frames)),
		Disposal: make([]byte, 0, len(frames)),
	}
	for _, frame := range frames {
		p := image.NewPaletted(frame.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, frame.Bounds(), frame, image.Point{})
		out.Image = append(out.Image, p)
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalNone)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := gif.EncodeAll(f, out); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding GIF: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}

// WritePNGSequence dumps each frame as a zero-padded numbered PNG in
// dir, for hand-off to an external movie encoder.
func WritePNGSequence(frames []*image.RGBA, dir string) error {
	defer metrics.Timer(metrics.Encode)()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating frame dir: %w", err)
	}
	for i, frame := range frames {
		path := filepath.Join(dir, fmt.Sprintf("frame-%05d.png", i))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating frame %d: %w", i, err)
		}
		if err := png.Encode(f, frame); err != nil {
			f.Close()
			return fmt.Errorf("encoding frame %d: %w", i, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing frame %d: %w", i, err)
		}
	}
	return nil
}
