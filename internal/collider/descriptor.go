// Package collider turns authored collider descriptors into physics bodies.
//
// Descriptors come from the JSON exported by the level authoring tool: one
// record per collider with a shape tag (BOX, SPHERE or MESH), a transform and
// surface properties. A Builder converts each descriptor into a physics.Body
// and Populate adds the results to a world, skipping (and reporting) records
// that cannot be built.
package collider

import rl "github.com/gen2brain/raylib-go/raylib"

// Shape tags as they appear in the collider file.
const (
	ShapeBox    = "BOX"
	ShapeSphere = "SPHERE"
	ShapeMesh   = "MESH"
)

// BodyKind selects whether a collider moves.
type BodyKind string

const (
	// Dynamic bodies are simulated with the descriptor's mass.
	Dynamic BodyKind = "DYNAMIC"
	// Passive bodies never move; their mass is forced to zero.
	Passive BodyKind = "PASSIVE"
)

// ParseBodyKind maps the file's type string to a BodyKind. Only PASSIVE is
// special; ACTIVE, DYNAMIC and anything else simulate.
func ParseBodyKind(s string) BodyKind {
	if s == string(Passive) {
		return Passive
	}
	return Dynamic
}

// Common holds the fields every descriptor carries.
type Common struct {
	Name        string
	Position    rl.Vector3
	Kind        BodyKind
	Friction    float32
	Restitution float32
	Mass        float32

	source  int
	decoded bool
}

// Header returns the shared fields.
func (c Common) Header() Common { return c }

// Source is the record's position in the collider file. ok is false for
// descriptors that were not decoded from a file.
func (c Common) Source() (index int, ok bool) { return c.source, c.decoded }

// Descriptor is one collider record. The concrete types are *Box, *Sphere and *Mesh.
type Descriptor interface {
	Shape() string
	Header() Common
	sealed()
}

// Box is a cuboid. Dimensions are full extents. Rotation is a quaternion
// (x, y, z, w) or, in Euler mode, XYZ angles in radians. A nil field was absent
// from the source record.
type Box struct {
	Common
	Dimensions []float32
	Rotation   []float32
}

// Sphere is a ball of the given radius. Zero means the radius was absent.
type Sphere struct {
	Common
	Radius float32
}

// Mesh is a triangle soup: flat x,y,z vertices and three indices per triangle.
type Mesh struct {
	Common
	Vertices []float32
	Indices  []int
}

func (*Box) Shape() string    { return ShapeBox }
func (*Sphere) Shape() string { return ShapeSphere }
func (*Mesh) Shape() string   { return ShapeMesh }

func (*Box) sealed()    {}
func (*Sphere) sealed() {}
func (*Mesh) sealed()   {}

// isNil also catches typed nils such as (*Box)(nil).
func isNil(d Descriptor) bool {
	switch d := d.(type) {
	case nil:
		return true
	case *Box:
		return d == nil
	case *Sphere:
		return d == nil
	case *Mesh:
		return d == nil
	}
	return false
}

// warningIndex is the file position of d when it was decoded, else i.
func warningIndex(d Descriptor, i int) int {
	if isNil(d) {
		return i
	}
	if src, ok := d.Header().Source(); ok {
		return src
	}
	return i
}
