package resolver

// defaultColors is the Brewer Set1 qualitative scheme, the usual
// choice for categorical selection layers.
var defaultColors = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3",
	"#ff7f00", "#a65628", "#f781bf", "#999999",
}

// Palette assigns layer colors in order. One palette belongs to one
// group and is only touched from that group's dispatcher, so it needs
// no locking.
type Palette struct {
	colors []string
	next   int
}

// NewPalette creates a palette from the given colors, falling back to
// the default qualitative scheme when none are given.
func NewPalette(colors ...string) *Palette {
	if len(colors) == 0 {
		colors = defaultColors
	}
	return &Palette{colors: colors}
}

// Default returns the color used for the transient highlight layer.
func (p *Palette) Default() string {
	return p.colors[0]
}

// Next returns the next layer color, cycling when exhausted.
func (p *Palette) Next() string {
	c := p.colors[p.next%len(p.colors)]
	p.next++
	return c
}

// Reset rewinds the cycle, as happens when a persistent stack is
// cleared.
func (p *Palette) Reset() {
	p.next = 0
}
