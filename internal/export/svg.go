package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/trajsim/internal/dynamo"
)

var ErrNothingToDraw = errors.New("export: fewer than two finite positions")

// SVGOptions controls the rendered image.
type SVGOptions struct {
	Width, Height int
	Stroke        string
	Background    string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 400, Stroke: "#00ff00", Background: "#0a0a0a"}
}

// TrajectorySVG draws the flight path as a polyline over a ground line at
// y=0. Drawing stops at the first non-finite state.
func TrajectorySVG(w io.Writer, states []dynamo.Projectile, opts SVGOptions) error {
	points := make([]dynamo.Vec2, 0, len(states))
	for _, s := range states {
		if !s.Position.IsFinite() {
			break
		}
		points = append(points, s.Position)
	}
	if len(points) < 2 {
		return ErrNothingToDraw
	}

	minX, maxX := math.Min(points[0].X, 0), math.Max(points[0].X, 0)
	minY, maxY := math.Min(points[0].Y, 0), math.Max(points[0].Y, 0)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := math.Max(maxX-minX, 1)
	rangeY := math.Max(maxY-minY, 1)
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(opts.Width), float64(opts.Height)
	project := func(p dynamo.Vec2) (float64, float64) {
		return (p.X - minX) / rangeX * width, height - (p.Y-minY)/rangeY*height
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background)

	_, gy := project(dynamo.Vec2{})
	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-dasharray="4 4"/>
`, gy, opts.Width, gy)

	sb.WriteString(`<path fill="none" stroke="` + opts.Stroke + `" stroke-width="1.5" d="M`)
	for i, p := range points {
		x, y := project(p)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
