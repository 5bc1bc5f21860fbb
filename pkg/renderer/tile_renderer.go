package renderer

import (
	"image"
	"math/rand"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/integrator"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID      int             // Unique tile identifier
	Bounds  image.Rectangle // Pixel bounds (x0,y0,x1,y1), row 0 at the top
	Sampler core.Sampler    // Tile-owned random stream, used by one worker at a time
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	// Create deterministic random generator based on tile ID
	random := rand.New(rand.NewSource(int64(id + 42))) // +42 to avoid seed 0

	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewRandomSampler(random),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}

// TileRenderer traces samples for the pixels of one tile
type TileRenderer struct {
	tracer *integrator.PathTracer
}

// NewTileRenderer creates a tile renderer around a path tracer
func NewTileRenderer(tracer *integrator.PathTracer) *TileRenderer {
	return &TileRenderer{tracer: tracer}
}

// RenderTile adds samples contributions to every pixel of the tile and returns
// the number of samples traced
func (tr *TileRenderer) RenderTile(frame *integrator.Frame, tile *Tile, samples int, buffer *AccumulationBuffer) int {
	bounds := tile.Bounds
	height := buffer.Height()
	traced := 0

	for s := 0; s < samples; s++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			// The camera counts rows from the bottom
			v := height - 1 - y
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				buffer.Add(x, y, tr.tracer.Sample(frame, x, v, tile.Sampler))
				traced++
			}
		}
	}

	return traced
}
