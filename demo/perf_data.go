/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The eCollection Grid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/filters"
)

var (
	plantNames  = []string{"Birch", "Bracken", "Bluebell", "Clover", "Foxglove", "Juniper", "Nettle", "Rowan", "Sedge", "Yew"}
	animalNames = []string{"Badger", "Beetle", "Hedgehog", "Heron", "Newt", "Otter", "Robin", "Stoat", "Toad", "Vole"}
	countries   = []string{"France", "Germany", "Ireland", "Italy", "Norway", "Poland", "Spain", "United Kingdom"}
	labels      = []string{"common", "native", "rare", "protected", "invasive", "nocturnal"}
	diets       = []string{"carnivore", "herbivore", "insectivore", "omnivore"}
)

// GenerateSpecimens creates n random specimens for load testing the grid.
// The same seed gives the same values; ids are random UUIDs.
func GenerateSpecimens(n int, seed int64, base string) []*collection.Document {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

	docs := make([]*collection.Document, 0, n)
	for i := 0; i < n; i++ {
		data := map[string]any{
			"alive":  rng.Intn(5) > 0,
			"found":  start.AddDate(0, 0, rng.Intn(3650)).Format(filters.StoredDateLayout),
			"weight": float64(rng.Intn(100000)) / 100,
			"location": map[string]any{
				"country": countries[rng.Intn(len(countries))],
				"lat":     float64(3500+rng.Intn(3500)) / 100,
			},
			"tags": []any{
				map[string]any{"label": labels[rng.Intn(len(labels))]},
			},
		}
		if rng.Intn(2) == 0 {
			data["kind"] = "plant"
			data["name"] = fmt.Sprintf("%s #%d", plantNames[rng.Intn(len(plantNames))], i+1)
			data["details"] = map[string]any{
				"height":    float64(rng.Intn(3000)),
				"flowering": rng.Intn(2) == 0,
			}
		} else {
			data["kind"] = "animal"
			data["name"] = fmt.Sprintf("%s #%d", animalNames[rng.Intn(len(animalNames))], i+1)
			data["details"] = map[string]any{
				"legs": float64(2 * rng.Intn(4)),
				"diet": diets[rng.Intn(len(diets))],
			}
		}
		docs = append(docs, collection.NewDocument(uuid.NewString(), data, base))
	}
	return docs
}
