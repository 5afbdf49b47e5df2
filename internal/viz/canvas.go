package viz

import (
	"math"
	"strings"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y); the canvas is Width*2 by
// Height*4 dots with y growing downward.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Bounds is a world-space rectangle in meters.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// FitBounds covers every finite point plus the origin, padded by 5%.
func FitBounds(points []dynamo.Vec2) Bounds {
	b := Bounds{}
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	padX := math.Max((b.MaxX-b.MinX)*0.05, 1)
	padY := math.Max((b.MaxY-b.MinY)*0.05, 1)
	b.MinX -= padX
	b.MaxX += padX
	b.MinY -= padY
	b.MaxY += padY
	return b
}

// Project maps a world point onto sub-pixel coordinates.
func (c *Canvas) Project(p dynamo.Vec2, b Bounds) (int, int, bool) {
	if !p.IsFinite() {
		return 0, 0, false
	}
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (p.X - b.MinX) / (b.MaxX - b.MinX) * w
	py := h - (p.Y-b.MinY)/(b.MaxY-b.MinY)*h
	if px < 0 || py < 0 || px > w || py > h {
		return 0, 0, false
	}
	return int(math.Round(px)), int(math.Round(py)), true
}

// DrawPath plots the ground line and connects consecutive finite points.
func (c *Canvas) DrawPath(points []dynamo.Vec2, b Bounds) {
	if gx0, gy, ok := c.Project(dynamo.Vec2{X: b.MinX, Y: 0}, b); ok {
		gx1, _, _ := c.Project(dynamo.Vec2{X: b.MaxX, Y: 0}, b)
		for x := gx0; x <= gx1; x += 2 {
			c.Set(x, gy)
		}
	}

	prevOK := false
	var px, py int
	for _, p := range points {
		x, y, ok := c.Project(p, b)
		if ok && prevOK {
			c.DrawLine(px, py, x, y)
		} else if ok {
			c.Set(x, y)
		}
		px, py, prevOK = x, y, ok
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
