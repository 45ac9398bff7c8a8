// SPDX-License-Identifier: MIT

package transform

// Padding gives the extent of a window around its anchor cell.
type Padding struct {
	Left   int
	Right  int
	Bottom int
	Top    int
}

// GridWindow is a rectangular window slid across a time-height grid.
// For even sizes the anchor sits left of center, so padding is
// ceil(n/2)-1 before the anchor and floor(n/2) after it.
type GridWindow struct {
	Padding  Padding
	Position [2]int
}

// NewGridWindow returns a window of the given length (time) and height
// (levels), positioned at the lowest valid anchor.
func NewGridWindow(length, height int) *GridWindow {
	left, right := splitPadding(length)
	bottom, top := splitPadding(height)
	return &GridWindow{
		Padding:  Padding{Left: left, Right: right, Bottom: bottom, Top: top},
		Position: [2]int{left, bottom},
	}
}

func splitPadding(size int) (before, after int) {
	return (size+1)/2 - 1, size / 2
}

// Members calls fn with every cell index covered by the window at its
// current position.
func (w *GridWindow) Members(fn func(i, j int)) {
	x, y := w.Position[0], w.Position[1]
	for i := x - w.Padding.Left; i <= x+w.Padding.Right; i++ {
		for j := y - w.Padding.Bottom; j <= y+w.Padding.Top; j++ {
			fn(i, j)
		}
	}
}
