/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sampledataset

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	FUNC_RANDOM = "random"
	FUNC_NORMAL = "normal"
)

const (
	NormalMean   = 0.5
	NormalStdDev = 0.15
)

// Generator produces synthetic float64 observations. Implementations are not
// safe for concurrent use; each one owns its seeded source.
type Generator interface {
	Name() string
	Next() float64
	Batch(n int) []float64
}

// UniformGenerator yields values in [0, 1).
type UniformGenerator struct {
	faker *gofakeit.Faker
}

func NewUniformGenerator(seed int64) *UniformGenerator {
	return &UniformGenerator{faker: gofakeit.NewUnlocked(seed)}
}

func (g *UniformGenerator) Name() string {
	return FUNC_RANDOM
}

func (g *UniformGenerator) Next() float64 {
	return g.faker.Float64Range(0, 1)
}

func (g *UniformGenerator) Batch(n int) []float64 {
	return fillBatch(g, n)
}

// NormalGenerator yields values from N(NormalMean, NormalStdDev). The values
// are not truncated, so a long run will produce a few outside [0, 1].
type NormalGenerator struct {
	faker *gofakeit.Faker
}

func NewNormalGenerator(seed int64) *NormalGenerator {
	return &NormalGenerator{faker: gofakeit.NewUnlocked(seed)}
}

func (g *NormalGenerator) Name() string {
	return FUNC_NORMAL
}

func (g *NormalGenerator) Next() float64 {
	return g.faker.Rand.NormFloat64()*NormalStdDev + NormalMean
}

func (g *NormalGenerator) Batch(n int) []float64 {
	return fillBatch(g, n)
}

func fillBatch(g Generator, n int) []float64 {
	if n <= 0 {
		return nil
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = g.Next()
	}
	return values
}

func NewGenerator(funcName string, seed int64) (Generator, error) {
	switch funcName {
	case FUNC_RANDOM, "":
		return NewUniformGenerator(seed), nil
	case FUNC_NORMAL:
		return NewNormalGenerator(seed), nil
	default:
		return nil, fmt.Errorf("NewGenerator: unknown func %q, expected %v or %v", funcName, FUNC_RANDOM, FUNC_NORMAL)
	}
}
