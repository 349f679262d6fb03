package pathgen

import (
	"fmt"
	"strings"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// ShardedGenerator spreads files over Git-style shard directories derived
// from the media ID: {context}/{ab}/{cd}
type ShardedGenerator struct {
	// ShardLength controls how many characters each shard level uses (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) BuildPath(media simplemedia.Media) string {
	idStr := strings.ReplaceAll(media.ID.String(), "-", "")

	shardLength := g.ShardLength
	if shardLength <= 0 {
		shardLength = 2
	}
	if shardLength*2 > len(idStr) {
		shardLength = len(idStr) / 2
	}

	return fmt.Sprintf("%s/%s/%s",
		contextDir(media), idStr[:shardLength], idStr[shardLength:shardLength*2])
}

// FlatGenerator keeps every file of a context in one directory
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) BuildPath(media simplemedia.Media) string {
	return contextDir(media)
}

// PrefixGenerator places the paths of a base generator under a fixed prefix,
// e.g. a tenant or environment name
type PrefixGenerator struct {
	BaseGenerator simplemedia.PathBuilder
	Prefix        string
}

func NewPrefixGenerator(prefix string, base simplemedia.PathBuilder) *PrefixGenerator {
	return &PrefixGenerator{
		BaseGenerator: base,
		Prefix:        strings.Trim(prefix, "/"),
	}
}

func (g *PrefixGenerator) BuildPath(media simplemedia.Media) string {
	basePath := g.BaseGenerator.BuildPath(media)
	if g.Prefix == "" {
		return basePath
	}
	return fmt.Sprintf("%s/%s", sanitizePathComponent(g.Prefix), basePath)
}

// FuncGenerator allows users to provide their own path function. The
// function must be deterministic and must not read the binary content.
type FuncGenerator struct {
	BuildFunc func(media simplemedia.Media) string
}

func NewFuncGenerator(fn func(media simplemedia.Media) string) *FuncGenerator {
	return &FuncGenerator{
		BuildFunc: fn,
	}
}

func (g *FuncGenerator) BuildPath(media simplemedia.Media) string {
	return g.BuildFunc(media)
}

// NewRecommendedGenerator returns the generator used by default
func NewRecommendedGenerator() simplemedia.PathBuilder {
	return NewShardedGenerator()
}

// New returns the generator registered under name: "sharded" or "flat"
func New(name string) (simplemedia.PathBuilder, error) {
	switch name {
	case "", "sharded":
		return NewShardedGenerator(), nil
	case "flat":
		return NewFlatGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown path generator: %s", name)
	}
}

func contextDir(media simplemedia.Media) string {
	if media.Context == "" {
		return simplemedia.DefaultContext
	}
	return sanitizePathComponent(media.Context)
}

func sanitizePathComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
		"..", "_",
	)
	return strings.ToLower(replacer.Replace(component))
}
