package approval

// RollupResult is the outcome of folding every workflow step of one loan
// request into a single overall status.
type RollupResult struct {
	Overall OverallStatus
	Global  GlobalStatus

	SpecificTotal    int
	SpecificApproved int
	SpecificRejected int
}

// ComputeRollup folds the steps. The ordering is load-bearing:
//
//  1. no steps at all → pending;
//  2. any rejected global step rejects the whole request outright;
//  3. otherwise specific steps decide among approved / rejected /
//     partially_approved / pending by counting;
//  4. a non-approved global gate downgrades a specific "approved" back to
//     pending — overall can never be approved while the global gate is not.
func ComputeRollup(steps []WorkflowStep) RollupResult {
	res := RollupResult{Overall: OverallPending, Global: GlobalPending}
	if len(steps) == 0 {
		return res
	}

	var global, specific []WorkflowStep
	for _, s := range steps {
		if s.Type == StepGlobal {
			global = append(global, s)
		} else {
			specific = append(specific, s)
		}
	}

	if len(global) > 0 {
		anyApproved := false
		for _, s := range global {
			switch s.Status {
			case StepRejected:
				res.Global = GlobalRejected
				res.Overall = OverallRejected
				res.countSpecific(specific)
				return res
			case StepApproved:
				anyApproved = true
			}
		}
		if anyApproved {
			res.Global = GlobalApproved
		}
	}

	res.countSpecific(specific)
	if len(specific) == 0 {
		if res.Global == GlobalApproved {
			res.Overall = OverallApproved
		}
		return res
	}

	switch {
	case res.SpecificRejected > 0 && res.SpecificApproved > 0:
		res.Overall = OverallPartiallyApproved
	case res.SpecificApproved == res.SpecificTotal:
		res.Overall = OverallApproved
	case res.SpecificRejected == res.SpecificTotal:
		res.Overall = OverallRejected
	default:
		res.Overall = OverallPending
	}

	// Global gates specific: with a global partition present and not yet
	// approved, the request cannot be overall-approved.
	if len(global) > 0 && res.Global != GlobalApproved && res.Overall == OverallApproved {
		res.Overall = OverallPending
	}
	return res
}

func (r *RollupResult) countSpecific(specific []WorkflowStep) {
	r.SpecificTotal = len(specific)
	for _, s := range specific {
		switch s.Status {
		case StepApproved:
			r.SpecificApproved++
		case StepRejected:
			r.SpecificRejected++
		}
	}
}

// Apply copies a computed result onto the stored rollup row.
func (st *StatusRollup) Apply(res RollupResult) {
	st.OverallStatus = res.Overall
	st.GlobalStatus = res.Global
	st.SpecificTotal = res.SpecificTotal
	st.SpecificApproved = res.SpecificApproved
	st.SpecificRejected = res.SpecificRejected
}
