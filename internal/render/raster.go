package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"refillmap/internal/cluster"
	"refillmap/internal/geo"
)

// RasterOptions controls snapshot rendering
type RasterOptions struct {
	Supersample int // draw at this multiple of the output size, then downsample
	Background  colorful.Color
}

// DefaultRasterOptions returns 2x supersampling on the map background
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{Supersample: 2, Background: ColorBackground}
}

// ringWidth is the white outline drawn around every disc, in px
const ringWidth = 2.0

// Rasterize draws one frame to an image of the given pixel size. It reads the
// viewport and never changes it, so the same inputs give the same pixels.
func Rasterize(markers []cluster.Marker, layers geo.Layers, proj *geo.Projection, vp geo.Viewport, size geo.Size, opts RasterOptions) *image.RGBA {
	w, h := int(math.Ceil(size.W)), int(math.Ceil(size.H))
	if size.Empty() || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}

	big := image.NewRGBA(image.Rect(0, 0, w*ss, h*ss))
	draw.Draw(big, big.Bounds(), image.NewUniform(RGBA(opts.Background)), image.Point{}, draw.Src)

	k := float64(ss)
	if len(layers) > 0 {
		bounds := proj.VisibleBounds(vp, size)
		for _, ftype := range geo.DrawOrder {
			c := RGBA(FeatureColor(ftype))
			for _, feature := range geo.FilterByBounds(layers[ftype], bounds) {
				rasterLine(big, proj, vp, size, feature.Points, k, c)
			}
		}
	}

	for i := range markers {
		mk := &markers[i]
		if !mk.Screen.Finite() {
			continue
		}
		var (
			d    float64
			fill colorful.Color
		)
		if mk.Kind == cluster.Group {
			d, fill = ClusterDiameter(mk.Count), ClusterColor(mk.Count)
		} else {
			d, fill = MarkerDiameter(mk.Selected), StationColor(mk.Station, mk.Selected)
		}
		cx, cy := mk.Screen.X*k, mk.Screen.Y*k
		fillDisc(big, cx, cy, d/2*k, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		fillDisc(big, cx, cy, (d/2-ringWidth)*k, RGBA(fill))
	}

	out := big
	if ss > 1 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), draw.Src, nil)
	}

	// text goes on after downsampling so the bitmap font stays crisp
	for i := range markers {
		mk := &markers[i]
		if mk.Kind == cluster.Group && mk.Screen.Finite() {
			drawLabel(out, mk.Screen, strconv.Itoa(mk.Count))
		}
	}
	return out
}

func rasterLine(img *image.RGBA, proj *geo.Projection, vp geo.Viewport, size geo.Size, points []geo.Point, k float64, c color.RGBA) {
	half := int(k) / 2
	for i := 0; i < len(points)-1; i++ {
		p1 := proj.WorldToScreen(points[i], vp, size).Mul(k)
		p2 := proj.WorldToScreen(points[i+1], vp, size).Mul(k)
		if !p1.Finite() || !p2.Finite() {
			continue
		}
		x0, y0 := int(math.Round(p1.X)), int(math.Round(p1.Y))
		x1, y1 := int(math.Round(p2.X)), int(math.Round(p2.Y))
		b := img.Bounds()
		if offCanvas(x0, y0, x1, y1, b.Dx(), b.Dy()) {
			continue
		}
		bresenham(x0, y0, x1, y1, func(x, y int) {
			for dy := -half; dy <= half; dy++ {
				for dx := -half; dx <= half; dx++ {
					img.SetRGBA(x+dx, y+dy, c)
				}
			}
		})
	}
}

// fillDisc sets every pixel whose centre lies within r of (cx, cy)
func fillDisc(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	if r <= 0 {
		return
	}
	b := img.Bounds().Intersect(image.Rect(
		int(math.Floor(cx-r)), int(math.Floor(cy-r)),
		int(math.Ceil(cx+r))+1, int(math.Ceil(cy+r))+1,
	))
	r2 := r * r
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func drawLabel(img *image.RGBA, at geo.Point, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(text).Round()
	// Face7x13 has an ascent of 11 and a descent of 2
	d.Dot = fixed.P(int(math.Round(at.X))-width/2, int(math.Round(at.Y))+11/2)
	d.DrawString(text)
}

// WriteImage encodes img by file extension: .webp or .png
func WriteImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".webp" && ext != ".png" {
		return fmt.Errorf("unsupported image format %q (use .webp or .png)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	switch ext {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	case ".png":
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
