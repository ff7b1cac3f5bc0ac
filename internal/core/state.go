package core

// State is the presence of a LogicalKey across both backing stores
type State int

const (
	StateAbsent     State = iota // neither store has an entry
	StatePresent                 // ciphertext and key both present
	StateMissingKey              // ciphertext without key
	StateOrphanKey               // key without ciphertext
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePresent:
		return "present"
	case StateMissingKey:
		return "missing-key"
	case StateOrphanKey:
		return "orphan-key"
	default:
		return "unknown"
	}
}

func stateOf(hasCipher, hasKey bool) State {
	switch {
	case hasCipher && hasKey:
		return StatePresent
	case hasCipher:
		return StateMissingKey
	case hasKey:
		return StateOrphanKey
	default:
		return StateAbsent
	}
}
