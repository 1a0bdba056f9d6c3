package authz

type Outcome int

const (
	OutcomeAllowed Outcome = iota
	OutcomeForbidden
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllowed:
		return "allowed"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

// Decision is the guard's verdict. Reason is set only when forbidden.
type Decision struct {
	Outcome Outcome
	Reason  string
}

func Allowed() Decision {
	return Decision{Outcome: OutcomeAllowed}
}

func Forbidden(reason string) Decision {
	return Decision{Outcome: OutcomeForbidden, Reason: reason}
}

func NotFound() Decision {
	return Decision{Outcome: OutcomeNotFound}
}

func (d Decision) IsAllowed() bool {
	return d.Outcome == OutcomeAllowed
}
