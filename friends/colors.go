package friends

import (
	"sync"

	"geostories.app/core/pubky"
)

// Palette is the set of friend colours, handed out in order.
var Palette = []string{
	"#A29BFE", // lavender
	"#4ECDC4", // teal
	"#45B7D1", // blue
	"#FFA07A", // light salmon
	"#98D8C8", // mint
	"#F7B731", // yellow
	"#5F27CD", // purple
	"#00D2D3", // cyan
	"#FF9FF3", // pink
	"#54A0FF", // light blue
	"#48DBFB", // sky blue
	"#1DD1A1", // green
	"#F368E0", // magenta
	"#FF9F43", // orange
	"#00B894", // emerald
	"#6C5CE7", // indigo
	"#FD79A8", // rose
	"#FDCB6E", // mustard
	"#74B9FF", // periwinkle
	"#FF6B6B", // red
}

// ColorAssigner gives each identity a colour the first time it is seen and
// the same colour afterwards. The nth identity gets Palette[n % len(Palette)].
type ColorAssigner struct {
	mu       sync.Mutex
	assigned map[pubky.Key]string
}

func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{assigned: make(map[pubky.Key]string)}
}

func (c *ColorAssigner) Color(k pubky.Key) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if color, ok := c.assigned[k]; ok {
		return color
	}
	color := Palette[len(c.assigned)%len(Palette)]
	c.assigned[k] = color
	return color
}

// Lookup returns the colour of k without assigning one.
func (c *ColorAssigner) Lookup(k pubky.Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	color, ok := c.assigned[k]
	return color, ok
}

func (c *ColorAssigner) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.assigned)
}
