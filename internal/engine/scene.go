package engine

// System is a per-frame callback. dt is the real time since the last frame in seconds.
type System func(dt float32)

type Scene struct {
	Name        string
	GameObjects []*GameObject

	uidMap  map[uint64]*GameObject
	systems []System
	camera  *GameObject
}

func NewScene(name string) *Scene {
	cam := NewGameObject("Camera")
	cam.Tags = []string{"camera"}
	s := &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		uidMap:      make(map[uint64]*GameObject),
		camera:      cam,
	}
	cam.Scene = s
	return s
}

// Camera returns the camera entity. It is owned by the scene but not listed in GameObjects.
func (s *Scene) Camera() *GameObject {
	return s.camera
}

func (s *Scene) AddGameObject(g *GameObject) {
	if s.uidMap == nil {
		s.uidMap = make(map[uint64]*GameObject)
	}
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
	s.uidMap[g.UID] = g
}

func (s *Scene) RemoveGameObject(g *GameObject) {
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			delete(s.uidMap, g.UID)
			g.Scene = nil
			return
		}
	}
}

func (s *Scene) FindByUID(uid uint64) *GameObject {
	return s.uidMap[uid]
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

// AddSystem registers fn to run once per Update, in registration order.
func (s *Scene) AddSystem(fn System) {
	if fn == nil {
		return
	}
	s.systems = append(s.systems, fn)
}

func (s *Scene) SystemCount() int {
	return len(s.systems)
}

func (s *Scene) Update(dt float32) {
	for _, sys := range s.systems {
		sys(dt)
	}
}
