package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

type bvhNode struct {
	Bounds    AABB
	Left      *bvhNode
	Right     *bvhNode
	Triangles []int // leaf only
}

// Trimesh is a static triangle soup with a BVH over its local-space triangles.
// Vertices is a flat x,y,z list and Indices holds three vertex indices per triangle.
type Trimesh struct {
	Vertices  []float32
	Indices   []int
	Triangles []Triangle

	root   *bvhNode
	bounds AABB
}

// NewTrimesh builds triangles from flat vertex and index buffers. Triangles
// referencing vertices out of range are skipped, as is a trailing partial triple.
func NewTrimesh(vertices []float32, indices []int) *Trimesh {
	m := &Trimesh{Vertices: vertices, Indices: indices, bounds: emptyAABB()}
	vertexCount := len(vertices) / 3
	vertex := func(i int) rl.Vector3 {
		return rl.Vector3{X: vertices[3*i], Y: vertices[3*i+1], Z: vertices[3*i+2]}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a < 0 || b < 0 || c < 0 || a >= vertexCount || b >= vertexCount || c >= vertexCount {
			continue
		}
		tri := Triangle{V0: vertex(a), V1: vertex(b), V2: vertex(c)}
		tri.Normal = rl.Vector3Normalize(cross(
			rl.Vector3Subtract(tri.V1, tri.V0),
			rl.Vector3Subtract(tri.V2, tri.V0),
		))
		m.Triangles = append(m.Triangles, tri)
		m.bounds = m.bounds.Expand(tri.V0).Expand(tri.V1).Expand(tri.V2)
	}
	if len(m.Triangles) == 0 {
		m.bounds = AABB{}
		return m
	}

	order := make([]int, len(m.Triangles))
	for i := range order {
		order[i] = i
	}
	m.root = m.buildBVHNode(order, 0)
	return m
}

func (m *Trimesh) Type() ShapeType { return ShapeTrimesh }

func (m *Trimesh) TriangleCount() int { return len(m.Triangles) }

func (m *Trimesh) VertexCount() int { return len(m.Vertices) / 3 }

func (m *Trimesh) LocalBounds() AABB { return m.bounds }

func (m *Trimesh) Bounds(pos rl.Vector3, q rl.Quaternion) AABB {
	out := emptyAABB()
	for _, c := range m.bounds.Corners() {
		out = out.Expand(toWorld(c, pos, q))
	}
	return out
}

// Inertia approximates the mesh by its local bounding box.
func (m *Trimesh) Inertia(mass float32) rl.Vector3 {
	half := rl.Vector3Scale(rl.Vector3Subtract(m.bounds.Max, m.bounds.Min), 0.5)
	return (&Box{HalfExtents: half}).Inertia(mass)
}

func (m *Trimesh) buildBVHNode(indices []int, depth int) *bvhNode {
	node := &bvhNode{Bounds: m.computeBounds(indices)}

	if len(indices) <= 4 || depth > 20 {
		node.Triangles = indices
		return node
	}

	// Split on the longest axis
	size := rl.Vector3Subtract(node.Bounds.Max, node.Bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > axisValue(size, axis) {
		axis = 2
	}

	mid := m.partition(indices, axis)
	if mid == 0 || mid == len(indices) {
		node.Triangles = indices
		return node
	}

	node.Left = m.buildBVHNode(indices[:mid], depth+1)
	node.Right = m.buildBVHNode(indices[mid:], depth+1)
	return node
}

func (m *Trimesh) computeBounds(indices []int) AABB {
	bounds := emptyAABB()
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds = bounds.Expand(tri.V0).Expand(tri.V1).Expand(tri.V2)
	}
	return bounds
}

func (m *Trimesh) centroid(idx int) rl.Vector3 {
	tri := &m.Triangles[idx]
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(tri.V0, tri.V1), tri.V2), 1.0/3.0)
}

// partition splits indices around the mean centroid on axis.
func (m *Trimesh) partition(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += axisValue(m.centroid(idx), axis)
	}
	center /= float32(len(indices))

	left, right := 0, len(indices)-1
	for left <= right {
		if axisValue(m.centroid(indices[left]), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func (m *Trimesh) query(node *bvhNode, box AABB, out []int) []int {
	if node == nil || !node.Bounds.Intersects(box) {
		return out
	}
	if node.Triangles != nil {
		return append(out, node.Triangles...)
	}
	out = m.query(node.Left, box, out)
	return m.query(node.Right, box, out)
}

// SphereIntersect tests a local-space sphere against the mesh. It returns the
// push-out of the deepest touching triangle and the contact point on it.
func (m *Trimesh) SphereIntersect(center rl.Vector3, radius float32) (bool, rl.Vector3, rl.Vector3) {
	if m.root == nil {
		return false, rl.Vector3{}, rl.Vector3{}
	}
	query := NewAABBFromCenter(center, rl.Vector3{X: radius, Y: radius, Z: radius})

	var (
		hit   bool
		push  rl.Vector3
		point rl.Vector3
		depth float32
	)
	for _, idx := range m.query(m.root, query, nil) {
		tri := &m.Triangles[idx]
		ok, p, closest := sphereTriangleIntersect(center, radius, tri)
		if !ok {
			continue
		}
		if d := rl.Vector3Length(p); !hit || d > depth {
			hit, push, point, depth = true, p, closest, d
		}
	}
	return hit, push, point
}

func sphereTriangleIntersect(center rl.Vector3, radius float32, tri *Triangle) (bool, rl.Vector3, rl.Vector3) {
	closest := closestPointOnTriangle(center, tri.V0, tri.V1, tri.V2)
	diff := rl.Vector3Subtract(center, closest)
	distSq := rl.Vector3DotProduct(diff, diff)
	if distSq >= radius*radius {
		return false, rl.Vector3{}, rl.Vector3{}
	}

	dist := math32.Sqrt(distSq)
	if dist < epsilon {
		// Center lies on the triangle: push along its normal
		return true, rl.Vector3Scale(tri.Normal, radius), closest
	}
	return true, rl.Vector3Scale(diff, (radius-dist)/dist), closest
}

// closestPointOnTriangle finds the closest point on triangle abc to p.
func closestPointOnTriangle(p, a, b, c rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}

// Raycast intersects a local-space ray with the mesh (Moller-Trumbore per triangle).
func (m *Trimesh) Raycast(origin, dir rl.Vector3, maxDistance float32) (float32, rl.Vector3, bool) {
	best := maxDistance
	var normal rl.Vector3
	hit := false
	m.raycastNode(m.root, origin, dir, &best, &normal, &hit)
	return best, normal, hit
}

func (m *Trimesh) raycastNode(node *bvhNode, origin, dir rl.Vector3, best *float32, normal *rl.Vector3, hit *bool) {
	if node == nil || !node.Bounds.intersectsRay(origin, dir, *best) {
		return
	}
	if node.Triangles == nil {
		m.raycastNode(node.Left, origin, dir, best, normal, hit)
		m.raycastNode(node.Right, origin, dir, best, normal, hit)
		return
	}
	for _, idx := range node.Triangles {
		tri := &m.Triangles[idx]
		if t, ok := rayTriangle(origin, dir, tri); ok && t < *best {
			*best = t
			*hit = true
			*normal = tri.Normal
			if rl.Vector3DotProduct(*normal, dir) > 0 {
				*normal = rl.Vector3Negate(*normal)
			}
		}
	}
}

func rayTriangle(origin, dir rl.Vector3, tri *Triangle) (float32, bool) {
	e1 := rl.Vector3Subtract(tri.V1, tri.V0)
	e2 := rl.Vector3Subtract(tri.V2, tri.V0)
	p := cross(dir, e2)
	det := rl.Vector3DotProduct(e1, p)
	if math32.Abs(det) < 1e-8 {
		return 0, false
	}
	inv := 1 / det
	s := rl.Vector3Subtract(origin, tri.V0)
	u := rl.Vector3DotProduct(s, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := cross(s, e1)
	v := rl.Vector3DotProduct(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := rl.Vector3DotProduct(e2, q) * inv
	return t, t >= 0
}
