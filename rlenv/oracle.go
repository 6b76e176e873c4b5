package rlenv

// GreedyOracle picks the sub-band with the highest expected throughput
// readable from an observation. The sub-band capacities are static
// scenario parameters the oracle is constructed with, ordered the same
// way as the one-hot columns of the observation.
type GreedyOracle struct {
	numRbs []int
}

// NewGreedyOracle creates a GreedyOracle for sub-bands with the given
// resource-block capacities.
func NewGreedyOracle(numRbs []int) *GreedyOracle {
	return &GreedyOracle{numRbs: numRbs}
}

// Act scores every sub-band as (1 - failureRate) * bitsPerRb * numRbs
// and returns the index of the best one. The bits-per-block estimate of
// a sub-band is the mean over the users currently on it, falling back
// to the population mean when the sub-band is empty.
func (o *GreedyOracle) Act(obs []float64) int {
	numBwps := len(o.numRbs)
	if numBwps == 0 || len(obs) < numBwps*3 {
		return 0
	}

	ueBlockLen := 5 + numBwps
	bwpBlockStart := len(obs) - numBwps*3
	numUes := bwpBlockStart / ueBlockLen

	bitsSum := make([]float64, numBwps)
	bitsCount := make([]int, numBwps)
	allBitsSum := 0.0
	for u := 0; u < numUes; u++ {
		block := obs[u*ueBlockLen : (u+1)*ueBlockLen]
		bits := block[2]
		allBitsSum += bits
		for b := 0; b < numBwps; b++ {
			if block[5+b] > 0.5 {
				bitsSum[b] += bits
				bitsCount[b]++
				break
			}
		}
	}

	populationBits := 1.0
	if numUes > 0 {
		populationBits = allBitsSum / float64(numUes)
	}

	best := 0
	maxScore := 0.0
	for b := 0; b < numBwps; b++ {
		bits := populationBits
		if bitsCount[b] > 0 {
			bits = bitsSum[b] / float64(bitsCount[b])
		}

		failureRate := obs[bwpBlockStart+b*3+1]
		score := (1 - failureRate) * bits * float64(o.numRbs[b])
		if score > maxScore {
			maxScore = score
			best = b
		}
	}

	return best
}
