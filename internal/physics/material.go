package physics

// Material carries the surface response of a body.
type Material struct {
	Name        string
	Friction    float32
	Restitution float32
}

func NewMaterial(name string, friction, restitution float32) *Material {
	return &Material{Name: name, Friction: friction, Restitution: restitution}
}

// ContactMaterial overrides the combined response for a specific material pair.
type ContactMaterial struct {
	A, B        *Material
	Friction    float32
	Restitution float32
}

func NewContactMaterial(a, b *Material, friction, restitution float32) *ContactMaterial {
	return &ContactMaterial{A: a, B: b, Friction: friction, Restitution: restitution}
}

type materialPair struct {
	a, b *Material
}

// combine derives the pair response when no ContactMaterial is registered:
// the product of the two frictions and of the two restitutions. Bodies
// without a material fall back to the world default.
func combine(a, b *Material, fallback *ContactMaterial) (friction, restitution float32) {
	if a == nil || b == nil {
		return fallback.Friction, fallback.Restitution
	}
	return a.Friction * b.Friction, a.Restitution * b.Restitution
}
