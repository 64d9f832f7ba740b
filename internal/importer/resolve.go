package importer

import (
	"sort"
	"strings"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// PartMeta is what an import source knows about a part before its material
// and grain are settled.
type PartMeta struct {
	Name     string
	Material string // explicit material attribute, may be empty
	Grain    string // explicit grain attribute, may be empty
}

// MaterialResolver proposes a material for a part. The second result is
// false when the resolver has no opinion.
type MaterialResolver func(meta PartMeta) (string, bool)

// GrainResolver proposes a grain direction for a part.
type GrainResolver func(meta PartMeta) (model.Grain, bool)

// ExplicitMaterial uses the part's own material attribute.
func ExplicitMaterial(meta PartMeta) (string, bool) {
	m := strings.TrimSpace(meta.Material)
	return m, m != ""
}

// MaterialFromName matches known material names as substrings of the part
// name. Names are tried longest first, then alphabetically, so that the
// result does not depend on catalog order.
func MaterialFromName(known []string) MaterialResolver {
	names := append([]string(nil), known...)
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return func(meta PartMeta) (string, bool) {
		for _, name := range names {
			if name != "" && strings.Contains(meta.Name, name) {
				return name, true
			}
		}
		return "", false
	}
}

// FixedMaterial always answers with material.
func FixedMaterial(material string) MaterialResolver {
	return func(PartMeta) (string, bool) {
		return material, true
	}
}

// DefaultMaterialResolvers is the standard chain: explicit attribute, then
// a catalog name inside the part name, then fallback.
func DefaultMaterialResolvers(known []string, fallback string) []MaterialResolver {
	if fallback == "" {
		fallback = model.DefaultMaterialName
	}
	return []MaterialResolver{ExplicitMaterial, MaterialFromName(known), FixedMaterial(fallback)}
}

// ResolveMaterial returns the first answer from the chain, or
// model.DefaultMaterialName when no resolver answers.
func ResolveMaterial(meta PartMeta, resolvers ...MaterialResolver) string {
	for _, r := range resolvers {
		if m, ok := r(meta); ok {
			return m
		}
	}
	return model.DefaultMaterialName
}

// ExplicitGrain parses the part's grain attribute. Unknown values are not
// an answer.
func ExplicitGrain(meta PartMeta) (model.Grain, bool) {
	if strings.TrimSpace(meta.Grain) == "" {
		return model.GrainAny, false
	}
	return model.ParseGrain(meta.Grain)
}

// ResolveGrain returns the first answer from the chain, or model.GrainAny.
func ResolveGrain(meta PartMeta, resolvers ...GrainResolver) model.Grain {
	for _, r := range resolvers {
		if g, ok := r(meta); ok {
			return g
		}
	}
	return model.GrainAny
}

// NormalizeDimensions orders three bounding extents so that thickness is
// the smallest, width the middle and height the largest.
func NormalizeDimensions(a, b, c float64) (thickness, width, height float64) {
	dims := []float64{a, b, c}
	sort.Float64s(dims)
	return dims[0], dims[1], dims[2]
}
