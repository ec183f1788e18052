package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	frameCellW = 8
	frameCellH = 16
	frameDelay = 2 // hundredths of a second
)

// Recorder rasterizes canvas frames and writes them as an animated GIF.
type Recorder struct {
	frames []*image.Paletted
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Len() int { return len(r.frames) }

// Capture appends the current canvas as a frame. Each lit dot becomes a
// block in its cell's ink; uncolored ink draws white.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(
		image.Rect(0, 0, c.Width*frameCellW, c.Height*frameCellH),
		color.Palette{color.Black, color.White},
	)
	index := map[lipgloss.Color]uint8{"": 1}
	dotW, dotH := frameCellW/2, frameCellH/4

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			bits := c.Grid[row][col] - blankCell
			if bits == 0 {
				continue
			}
			ci := inkIndex(img, index, c.ink[row][col])
			baseX, baseY := col*frameCellW, row*frameCellH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if bits&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, ci)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func inkIndex(img *image.Paletted, index map[lipgloss.Color]uint8, ink lipgloss.Color) uint8 {
	if i, ok := index[ink]; ok {
		return i
	}
	col, err := colorful.Hex(string(ink))
	if err != nil || len(img.Palette) >= 256 {
		return 1
	}
	img.Palette = append(img.Palette, col)
	i := uint8(len(img.Palette) - 1)
	index[ink] = i
	return i
}

func (r *Recorder) WriteGIF(w io.Writer) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, frameDelay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the recording to path.
func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.WriteGIF(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
