package project

// Placement is an asset's normalized position and size on the canvas.
type Placement struct {
	Position Point
	Size     Size
}

var (
	// FullCanvas centers an asset over the whole frame.
	FullCanvas = Placement{Position: Point{X: 0.5, Y: 0.5}, Size: Size{Width: 1, Height: 1}}
	// DefaultImageInset centers an image at 80% of the frame.
	DefaultImageInset = Placement{Position: Point{X: 0.5, Y: 0.5}, Size: Size{Width: 0.8, Height: 0.8}}
)

// NewAsset returns an unrotated asset at placement.
func NewAsset(id, mediaID string, kind AssetKind, placement Placement) Asset {
	return Asset{
		ID:       id,
		MediaID:  mediaID,
		Position: placement.Position,
		Size:     placement.Size,
		Kind:     kind,
	}
}

// IsZero reports whether p has no position or size.
func (p Placement) IsZero() bool {
	return p.Position.X == 0 && p.Position.Y == 0 && p.Size.Width == 0 && p.Size.Height == 0
}

// Valid reports whether every coordinate lies in [0, 1].
func (p Placement) Valid() bool {
	for _, v := range []float64{p.Position.X, p.Position.Y, p.Size.Width, p.Size.Height} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
