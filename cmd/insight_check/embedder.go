package main

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const embeddingDim = 64

// tokenEmbedder produce embeddings deterministas por bolsa de tokens:
// cada token suma en un bucket fijo y el vector se normaliza. Textos que
// comparten palabras quedan cerca en coseno, suficiente para ejercitar el
// ranking sin un proveedor real.
type tokenEmbedder struct {
	dim int
}

func newTokenEmbedder(dim int) *tokenEmbedder {
	return &tokenEmbedder{dim: dim}
}

func (e *tokenEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%e.dim] += 1.0
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
