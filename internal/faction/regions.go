// Region generation using simplex noise. Richness and defense come from two
// independent noise layers so regions vary in how attractive and how costly
// they are to take, deterministically from the world seed.
package faction

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Region is a claimable territory unit. Owned by at most one faction.
type Region struct {
	ID       string  `json:"id"`
	Richness float64 `json:"richness"` // 0..1, income multiplier for the holder
	Defense  float64 `json:"defense"`  // 0..1, strength bonus for the incumbent
}

// GenerateRegions creates count regions deterministically from seed.
func GenerateRegions(seed int64, count int) []Region {
	richNoise := opensimplex.NewNormalized(seed)
	defNoise := opensimplex.NewNormalized(seed + 1)

	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		// Sample along a diagonal with an irrational-ish stride so
		// neighboring regions decorrelate.
		x := float64(i) * 0.73
		y := float64(i) * 0.41

		regions = append(regions, Region{
			ID:       fmt.Sprintf("sector-%02d", i+1),
			Richness: richNoise.Eval2(x, y),
			Defense:  defNoise.Eval2(x, y),
		})
	}
	return regions
}
