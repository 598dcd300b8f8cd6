package collider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// record mirrors one element of the collider file. Pointers distinguish an
// absent field from a zero value.
type record struct {
	ObjName     *string   `json:"obj_name"`
	Name        *string   `json:"name"`
	Position    []float32 `json:"position"`
	Type        *string   `json:"type"`
	BodyKind    *string   `json:"bodyKind"`
	Shape       *string   `json:"shape"`
	Friction    *float32  `json:"friction"`
	Restitution *float32  `json:"restitution"`
	Mass        *float32  `json:"mass"`
	Radius      *float32  `json:"radius"`
	Dimensions  []float32 `json:"dimensions"`
	Rotation    []float32 `json:"rotation"`
	Vertices    []float32 `json:"vertices"`
	Indices     []int     `json:"indices"`
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Decode parses a collider file: a top-level JSON array of records. A
// non-array document fails with ErrMalformedInput. Records that cannot be
// turned into descriptors are returned as warnings and the rest still decode.
// Variant fields (dimensions, rotation, radius, vertices, indices) are not
// checked here; the Builder reports those.
func Decode(data []byte) ([]Descriptor, []Warning, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("%w: top-level null", ErrMalformedInput)
	}

	descs := make([]Descriptor, 0, len(raw))
	var warnings []Warning
	for i, msg := range raw {
		d, name, err := decodeRecord(msg, i)
		if err != nil {
			warnings = append(warnings, Warning{Index: i, Name: name, Err: err})
			continue
		}
		descs = append(descs, d)
	}
	return descs, warnings, nil
}

// DecodeReader is Decode over an io.Reader.
func DecodeReader(r io.Reader) ([]Descriptor, []Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read colliders: %w", err)
	}
	return Decode(data)
}

// ReadFile decodes the collider file at path.
func ReadFile(path string) ([]Descriptor, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read colliders: %w", err)
	}
	descs, warnings, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return descs, warnings, nil
}

func decodeRecord(msg json.RawMessage, index int) (Descriptor, string, error) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil, "", fmt.Errorf("%w: null", ErrMalformedRecord)
	}
	var r record
	if err := json.Unmarshal(msg, &r); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var name string
	if n := firstString(r.ObjName, r.Name); n != nil {
		name = *n
	} else {
		return nil, "", &MissingFieldError{Field: "obj_name"}
	}

	if r.Shape == nil {
		return nil, name, &MissingFieldError{Field: "shape"}
	}
	shape := *r.Shape

	kind := firstString(r.Type, r.BodyKind)
	switch {
	case r.Position == nil:
		return nil, name, &MissingFieldError{Shape: shape, Field: "position"}
	case kind == nil:
		return nil, name, &MissingFieldError{Shape: shape, Field: "type"}
	case r.Friction == nil:
		return nil, name, &MissingFieldError{Shape: shape, Field: "friction"}
	case r.Restitution == nil:
		return nil, name, &MissingFieldError{Shape: shape, Field: "restitution"}
	case r.Mass == nil:
		return nil, name, &MissingFieldError{Shape: shape, Field: "mass"}
	}

	pos, err := vec3("position", r.Position)
	if err != nil {
		return nil, name, err
	}
	common := Common{
		Name:        name,
		Position:    pos,
		Kind:        ParseBodyKind(*kind),
		Friction:    *r.Friction,
		Restitution: *r.Restitution,
		Mass:        *r.Mass,
		source:      index,
		decoded:     true,
	}

	switch shape {
	case ShapeBox:
		return &Box{Common: common, Dimensions: r.Dimensions, Rotation: r.Rotation}, name, nil
	case ShapeSphere:
		s := &Sphere{Common: common}
		if r.Radius != nil {
			s.Radius = *r.Radius
		}
		return s, name, nil
	case ShapeMesh:
		return &Mesh{Common: common, Vertices: r.Vertices, Indices: r.Indices}, name, nil
	default:
		return nil, name, &UnknownShapeError{Shape: shape}
	}
}

func vec3(field string, v []float32) (rl.Vector3, error) {
	if len(v) != 3 {
		return rl.Vector3{}, &InvalidGeometryError{
			Field:  field,
			Reason: fmt.Sprintf("want 3 components, got %d", len(v)),
		}
	}
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}
