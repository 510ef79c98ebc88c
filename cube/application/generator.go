package application

import (
	"math/rand/v2"
	"sync"

	"github.com/AzielCF/az-cube/cube/domain"
	"github.com/sirupsen/logrus"
)

// Generator draws random-move scrambles. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewGeneratorWithSource is used by tests to get reproducible scrambles.
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate draws a uniform face, redrawing while it equals the previous one, and an
// independent uniform modifier, until length moves exist. Non-positive lengths use
// the default length.
func (g *Generator) Generate(length int, cubeType domain.CubeType) domain.Sequence {
	if length <= 0 {
		length = domain.DefaultScrambleLength
	}
	if !cubeType.Valid() {
		logrus.Debugf("[SCRAMBLE] unknown cube type %q, using %s", cubeType, domain.DefaultCubeType)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	seq := make(domain.Sequence, 0, length)
	var last domain.Face
	for len(seq) < length {
		face := domain.Faces[g.rnd.IntN(len(domain.Faces))]
		if face == last {
			continue
		}
		last = face
		seq = append(seq, domain.Move{
			Face:     face,
			Modifier: domain.Modifiers[g.rnd.IntN(len(domain.Modifiers))],
		})
	}
	return seq
}
