package sched

import "math"

// lcaPolicy implements the least-collision heuristic. Every bandwidth
// part is scored by the throughput it can sustain after discounting the
// contention failures seen in the window.
type lcaPolicy struct {
	s *Scheduler
}

func (p *lcaPolicy) score(b BwpSnapshot) float64 {
	return (1 - b.FailureRate) * b.AvgBitsPerRb * float64(b.NumRbs)
}

// assign concentrates all users on the best-scoring bandwidth part when
// their number fits the per-part scheduling limit. Above the limit the
// users are spread proportionally to the scores instead.
func (p *lcaPolicy) assign() {
	s := p.s
	if len(s.bwps) == 0 {
		return
	}

	if len(s.ues) <= s.maxScheduledUes {
		best := s.bwps[0].BwpID
		maxScore := 0.0
		for _, b := range s.bwps {
			if sc := p.score(b); sc > maxScore {
				maxScore = sc
				best = b.BwpID
			}
		}
		for _, ue := range s.ues {
			s.registry.SwitchUe(ue.UeID, best)
		}
		return
	}

	total := 0.0
	scores := make([]float64, len(s.bwps))
	for i, b := range s.bwps {
		scores[i] = p.score(b)
		total += scores[i]
	}
	if total <= 0 {
		return
	}

	next := 0
	for i, b := range s.bwps {
		quota := int(math.Round(float64(len(s.ues)) * scores[i] / total))
		for q := 0; q < quota && next < len(s.ues); q++ {
			s.registry.SwitchUe(s.ues[next].UeID, b.BwpID)
			next++
		}
	}
}
