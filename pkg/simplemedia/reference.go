package simplemedia

import (
	"crypto/sha1"
	"encoding/hex"
	"math/rand/v2"
	"path/filepath"
	"strconv"
)

// Bounds of the random salt mixed into generated references
const (
	ReferenceSaltMin = 11111
	ReferenceSaltMax = 99999
)

// ReferenceGenerator derives the storage reference of a newly attached file
type ReferenceGenerator interface {
	Generate(fileName string) string
}

// Random is the source of the reference salt. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
}

// HashReferenceGenerator produces sha1(fileName + salt) followed by the file
// extension. The salt only has to separate uploads of the same name; it is
// not a security control.
type HashReferenceGenerator struct {
	rnd Random
}

// NewHashReferenceGenerator creates a generator drawing salts from rnd. A nil
// rnd uses the package level source of math/rand/v2, which is safe for
// concurrent use. A non-nil rnd must be safe for concurrent use if the
// generator is shared.
func NewHashReferenceGenerator(rnd Random) *HashReferenceGenerator {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return &HashReferenceGenerator{rnd: rnd}
}

// globalRandom draws from the goroutine-safe top level functions of math/rand/v2
type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// Generate returns a 40 character hex digest followed by the extension of fileName
func (g *HashReferenceGenerator) Generate(fileName string) string {
	salt := ReferenceSaltMin + g.rnd.IntN(ReferenceSaltMax-ReferenceSaltMin+1)
	sum := sha1.Sum([]byte(fileName + strconv.Itoa(salt)))
	return hex.EncodeToString(sum[:]) + filepath.Ext(fileName)
}

// ReferenceFunc adapts a function to ReferenceGenerator
type ReferenceFunc func(fileName string) string

func (f ReferenceFunc) Generate(fileName string) string {
	return f(fileName)
}
