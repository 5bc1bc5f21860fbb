package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/df07/go-particle-renderer/pkg/particles"
	"go.uber.org/zap"
)

// ErrUnknownScene is returned when no scene is registered under a name
var ErrUnknownScene = errors.New("unknown scene")

// Env is what a scene strategy may touch while setting up and updating
type Env struct {
	State   *State
	Store   *particles.Store
	Physics *particles.Integrator
	Rand    *rand.Rand // Owned by the frame goroutine
	Logger  *zap.Logger
}

// Strategy is a scene variant: its configuration, initial layout and per-frame update
type Strategy interface {
	Name() string
	Description() string
	// Configure sets floor, light, background and camera defaults
	Configure(s *State) error
	// InitializeParticles fills the store; may add concurrently
	InitializeParticles(env *Env) error
	// UpdateParticles advances the scene by dt and reports whether any particle moved
	UpdateParticles(env *Env, dt float64) bool
}

// SceneInfo describes a registered scene
type SceneInfo struct {
	ID          string `json:"id"`          // Lookup key
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // One-line summary
	Dynamic     bool   `json:"dynamic"`     // Particles move after setup
}

type registration struct {
	factory func() Strategy
	dynamic bool
}

var registry = map[string]registration{
	"helloworld": {factory: func() Strategy { return &HelloWorld{} }, dynamic: true},
	"spheregrid": {factory: func() Strategy { return &SphereGrid{} }, dynamic: false},
	"fountain":   {factory: func() Strategy { return &Fountain{} }, dynamic: true},
	"lanterns":   {factory: func() Strategy { return &Lanterns{} }, dynamic: true},
}

// canonicalID maps "HelloWorld", "hello-world" and "hello_world" to the same key
func canonicalID(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

// Lookup returns a fresh strategy for the named scene
func Lookup(name string) (Strategy, error) {
	reg, ok := registry[canonicalID(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
	}
	return reg.factory(), nil
}

// Names returns the display names of every registered scene, sorted
func Names() []string {
	infos := List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// List returns metadata for every registered scene, sorted by name
func List() []SceneInfo {
	infos := make([]SceneInfo, 0, len(registry))
	for id, reg := range registry {
		s := reg.factory()
		infos = append(infos, SceneInfo{
			ID:          id,
			Name:        s.Name(),
			Description: s.Description(),
			Dynamic:     reg.dynamic,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
