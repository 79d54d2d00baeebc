package codec

type point struct {
	X, Y int32
}

func (p *point) MarshalBorsh(e *Encoder) error {
	Put(e, I32, p.X)
	Put(e, I32, p.Y)
	return e.Err()
}

func (p *point) UnmarshalBorsh(d *Decoder) error {
	p.X = Get(d, I32)
	p.Y = Get(d, I32)
	return d.Err()
}

type color uint8

const (
	red color = iota
	green
	blue
)

var colorCodec = Enum(red, green, blue)

type shape interface {
	isShape()
}

type circle struct {
	R float32
}

type square struct {
	Side uint16
}

type dot struct{}

func (circle) isShape() {}
func (square) isShape() {}
func (dot) isShape()    {}

func (c *circle) MarshalBorsh(e *Encoder) error   { return F32.Encode(e, c.R) }
func (c *circle) UnmarshalBorsh(d *Decoder) error { c.R = Get(d, F32); return d.Err() }
func (s *square) MarshalBorsh(e *Encoder) error   { return U16.Encode(e, s.Side) }
func (s *square) UnmarshalBorsh(d *Decoder) error { s.Side = Get(d, U16); return d.Err() }

var shapeCodec = Union(
	Case[shape](0, Object[circle]()),
	Case[shape](1, Object[square]()),
	Case[shape](2, Empty[dot]()),
)

// record exercises every shape that allocates.
type record struct {
	Name   string
	Tags   []string
	Score  Option[float64]
	Owner  *point
	Color  color
	Shapes []shape
}

func (r *record) MarshalBorsh(e *Encoder) error {
	PutField(e, "name", String, r.Name)
	PutField(e, "tags", Seq(String), r.Tags)
	PutField(e, "score", Optional(F64), r.Score)
	PutField(e, "owner", Box(Object[point]()), r.Owner)
	PutField(e, "color", colorCodec, r.Color)
	PutField(e, "shapes", Seq(shapeCodec), r.Shapes)
	return e.Err()
}

func (r *record) UnmarshalBorsh(d *Decoder) error {
	r.Name = GetField(d, "name", String)
	r.Tags = GetField(d, "tags", Seq(String))
	r.Score = GetField(d, "score", Optional(F64))
	r.Owner = GetField(d, "owner", Box(Object[point]()))
	r.Color = GetField(d, "color", colorCodec)
	r.Shapes = GetField(d, "shapes", Seq(shapeCodec))
	return d.Err()
}

var recordCodec = Object[record]()

func sampleRecord() record {
	return record{
		Name:   "widget",
		Tags:   []string{"a", "", "ünïcode"},
		Score:  Some(0.25),
		Owner:  &point{X: -1, Y: 7},
		Color:  blue,
		Shapes: []shape{circle{R: 1.5}, dot{}, square{Side: 9}},
	}
}

type tree struct {
	Value    uint8
	Children []tree
}

func (t *tree) MarshalBorsh(e *Encoder) error {
	Put(e, U8, t.Value)
	Put(e, Seq(Object[tree]()), t.Children)
	return e.Err()
}

func (t *tree) UnmarshalBorsh(d *Decoder) error {
	t.Value = Get(d, U8)
	t.Children = Get(d, Seq(Object[tree]()))
	return d.Err()
}
