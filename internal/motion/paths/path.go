package paths

// Point is a single bar position observation in normalized frame
// coordinates (x and y in [0,1], y growing downward). Points are values
// and are never mutated after creation.
type Point struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	TimestampMs int64   `json:"t"`
}

// Path is a time-ordered sequence of bar positions. Point timestamps are
// strictly increasing. While a path is active it is owned by the Tracker
// and must only be reached through Snapshot or Detach; once detached it
// has a single owner and is safe to read freely.
type Path struct {
	ID        int64   `json:"id"`
	Points    []Point `json:"points"`
	CreatedMs int64   `json:"created_ms"`
	Color     string  `json:"color"`
}

// Len returns the number of points in the path.
func (p *Path) Len() int { return len(p.Points) }

// First returns the oldest point. Call only on non-empty paths.
func (p *Path) First() Point { return p.Points[0] }

// Last returns the newest point. Call only on non-empty paths.
func (p *Path) Last() Point { return p.Points[len(p.Points)-1] }

// DurationMs returns the time spanned by the path's points in milliseconds.
// Empty and single-point paths span zero.
func (p *Path) DurationMs() int64 {
	if len(p.Points) < 2 {
		return 0
	}
	return p.Last().TimestampMs - p.First().TimestampMs
}

// Clone returns a deep copy of the path. The copy shares nothing with the
// original.
func (p *Path) Clone() Path {
	out := Path{
		ID:        p.ID,
		CreatedMs: p.CreatedMs,
		Color:     p.Color,
	}
	if len(p.Points) > 0 {
		out.Points = make([]Point, len(p.Points))
		copy(out.Points, p.Points)
	}
	return out
}

// pathPalette provides stable display colors for new paths. IDs map onto
// the palette round-robin so renderers can distinguish concurrent paths.
var pathPalette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#bfef45", // lime
}

func colorForID(id int64) string {
	idx := int((id - 1) % int64(len(pathPalette)))
	if idx < 0 {
		idx = 0
	}
	return pathPalette[idx]
}
