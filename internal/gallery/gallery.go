// Package gallery tracks the position of an image carousel. Positions wrap in
// both directions.
package gallery

import "strconv"

// Gallery is a carousel over a fixed image list.
type Gallery struct {
	images    []string
	page      int
	direction int
}

// New creates a gallery showing the first image.
func New(images []string) *Gallery {
	return &Gallery{images: images}
}

// FromQuery creates a gallery positioned at the ?img= value raw. Bad values
// show the first image.
func FromQuery(images []string, raw string) *Gallery {
	g := New(images)
	if n, err := strconv.Atoi(raw); err == nil {
		g.page = n
	}
	return g
}

// Empty reports whether there is nothing to show.
func (g *Gallery) Empty() bool {
	return len(g.images) == 0
}

// Len is the number of images.
func (g *Gallery) Len() int {
	return len(g.images)
}

// Index is the current position in [0, Len).
func (g *Gallery) Index() int {
	return g.wrap(g.page)
}

func (g *Gallery) wrap(n int) int {
	if len(g.images) == 0 {
		return 0
	}
	i := n % len(g.images)
	if i < 0 {
		i += len(g.images)
	}
	return i
}

// Current is the image at Index, or "" for an empty gallery.
func (g *Gallery) Current() string {
	if g.Empty() {
		return ""
	}
	return g.images[g.Index()]
}

// Direction is +1 after moving forward, -1 after moving back and 0 before
// any move.
func (g *Gallery) Direction() int {
	return g.direction
}

// Next advances one image.
func (g *Gallery) Next() {
	g.page++
	g.direction = 1
}

// Prev goes back one image.
func (g *Gallery) Prev() {
	g.page--
	g.direction = -1
}

// Select jumps to image i.
func (g *Gallery) Select(i int) {
	current := g.Index()
	target := g.wrap(i)
	switch {
	case target > current:
		g.direction = 1
	case target < current:
		g.direction = -1
	default:
		g.direction = 0
	}
	g.page = target
}

// NextIndex and PrevIndex are the positions the arrow links point at.
func (g *Gallery) NextIndex() int { return g.wrap(g.page + 1) }

func (g *Gallery) PrevIndex() int { return g.wrap(g.page - 1) }

// Thumb is one entry of the thumbnail strip.
type Thumb struct {
	Index  int
	URL    string
	Active bool
}

// Thumbs lists the thumbnail strip. A single image has no strip.
func (g *Gallery) Thumbs() []Thumb {
	if len(g.images) < 2 {
		return nil
	}
	current := g.Index()
	out := make([]Thumb, len(g.images))
	for i, url := range g.images {
		out[i] = Thumb{Index: i, URL: url, Active: i == current}
	}
	return out
}
