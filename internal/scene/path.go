package scene

import (
	"strconv"
	"strings"

	"github.com/example/shotmark/internal/geom"
)

// PathOp is an SVG path command.
type PathOp byte

const (
	MoveTo PathOp = 'M'
	LineTo PathOp = 'L'
	QuadTo PathOp = 'Q'
	Close  PathOp = 'Z'
)

// Segment is one path command and its points.
type Segment struct {
	Op  PathOp
	Pts []geom.Point
}

// Path is a sequence of segments.
type Path []Segment

// String formats the path as SVG path data.
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte(s.Op))
		for _, pt := range s.Pts {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(pt.X, 'f', -1, 64))
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(pt.Y, 'f', -1, 64))
		}
	}
	return sb.String()
}

// Translate returns a copy of the path moved by d.
func (p Path) Translate(d geom.Point) Path {
	out := make(Path, len(p))
	for i, s := range p {
		pts := make([]geom.Point, len(s.Pts))
		for j, pt := range s.Pts {
			pts[j] = pt.Add(d)
		}
		out[i] = Segment{Op: s.Op, Pts: pts}
	}
	return out
}

func (p Path) clone() Path {
	return p.Translate(geom.Point{})
}
