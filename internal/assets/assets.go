package assets

import (
	"log/slog"
	"os"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Color name mapping for palettes
var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Gold":      rl.Gold,
	"White":     rl.White,
	"Gray":      rl.Gray,
	"LightGray": rl.LightGray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Pink":      rl.Pink,
	"Maroon":    rl.Maroon,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"SkyBlue":   rl.SkyBlue,
	"DarkBlue":  rl.DarkBlue,
	"Lime":      rl.Lime,
	"DarkGreen": rl.DarkGreen,
}

// LookupColor returns a raylib color from a name string
func LookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	return rl.White
}

// PaletteColor picks entry i of palette, wrapping around. An empty palette is white.
func PaletteColor(palette []string, i int) rl.Color {
	if len(palette) == 0 || i < 0 {
		return rl.White
	}
	return LookupColor(palette[i%len(palette)])
}

type loadedModel struct {
	model rl.Model
	ok    bool
}

// Models caches loaded models by path. Missing files are remembered too, so a
// scene without its glb files falls back to primitives without retrying.
type Models struct {
	mu     sync.Mutex
	models map[string]loadedModel
	log    *slog.Logger

	load   func(string) rl.Model
	unload func(rl.Model)
}

func NewModels(logger *slog.Logger) *Models {
	return newModels(logger, rl.LoadModel, rl.UnloadModel)
}

func newModels(logger *slog.Logger, load func(string) rl.Model, unload func(rl.Model)) *Models {
	if logger == nil {
		logger = slog.Default()
	}
	return &Models{
		models: make(map[string]loadedModel),
		log:    logger.With("component", "assets"),
		load:   load,
		unload: unload,
	}
}

// Load returns the model at path, loading it on first use. ok is false when
// path is empty, missing, or holds no meshes.
func (m *Models) Load(path string) (rl.Model, bool) {
	if path == "" {
		return rl.Model{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if lm, exists := m.models[path]; exists {
		return lm.model, lm.ok
	}

	var lm loadedModel
	if _, err := os.Stat(path); err != nil {
		m.log.Warn("model unavailable", "path", path, "err", err)
	} else {
		lm.model = m.load(path)
		lm.ok = lm.model.MeshCount > 0
		if !lm.ok {
			m.log.Warn("model has no meshes", "path", path)
		}
	}
	m.models[path] = lm
	return lm.model, lm.ok
}

func (m *Models) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.models)
}

func (m *Models) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, lm := range m.models {
		if lm.ok {
			m.unload(lm.model)
		}
	}
	m.models = make(map[string]loadedModel)
}
