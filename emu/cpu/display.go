package cpu

const (
	Width  = 64
	Height = 32
)

// Display is the 64x32 monochrome framebuffer, cell (x, y) lives at x + y*64.
type Display [Width * Height]bool

// Pixel reports whether the cell at (x, y) is lit. Coordinates outside the
// grid are never lit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d[x+y*Width]
}

// Lit counts the lit cells.
func (d *Display) Lit() int {
	count := 0
	for _, on := range d {
		if on {
			count++
		}
	}
	return count
}

func (d *Display) clear() {
	*d = Display{}
}

// drawSprite XORs sprite rows onto the grid with the origin wrapped into the
// grid. Rows and columns running past the right or bottom edge are clipped.
// Returns true if any lit cell was turned off.
func (d *Display) drawSprite(x, y uint8, sprite []uint8) bool {
	originX := int(x) % Width
	originY := int(y) % Height
	collision := false

	for row, bits := range sprite {
		py := originY + row
		if py >= Height {
			break
		}
		for col := 0; col < 8; col++ {
			px := originX + col
			if px >= Width {
				break
			}
			if bits&(0x80>>col) == 0 {
				continue
			}
			idx := px + py*Width
			if d[idx] {
				collision = true
			}
			d[idx] = !d[idx]
		}
	}
	return collision
}
