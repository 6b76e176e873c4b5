package sched

import "math"

// rlaPolicy delegates the assignment to the learned policy behind the
// environment boundary. Exploration follows an epsilon-greedy schedule
// that decays once per window.
type rlaPolicy struct {
	s *Scheduler
}

func (p *rlaPolicy) assign() {
	s := p.s

	s.env.UpdateSnapshot(s.snapshotLocked())

	var action int
	if s.rng.Float64() < s.epsilon {
		action = s.env.SampleAction()
	} else {
		action = s.env.OracleAction()
	}

	assignments := s.env.Assignments(action)
	for i, ue := range s.ues {
		if i >= len(assignments) {
			break
		}
		s.registry.SwitchUe(ue.UeID, assignments[i])
	}

	s.epsilon = math.Max(s.epsilon*s.epsilonDecay, s.epsilonMin)
	s.env.RecordStep()
}
