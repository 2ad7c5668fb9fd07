package credential

// State is the credential sub-state of a parcel.
//
//	NoPIN ──> TokenIssued ──> PINIssued ──> Verified
//	  └─────────────────────────┘  │  ↺ reissue
//	any non-terminal ──> Revoked (parcel reached a terminal status)
//
// An expired PIN stays in PINIssued; expiry is derived from the stored expiry time.
type State int

const (
	UnknownState State = iota
	NoPIN
	TokenIssued
	PINIssued
	Verified
	Revoked
)

func getStateStrings() map[State]string {
	//nolint:exhaustive // UnknownState is intentionally excluded as it's invalid
	return map[State]string{
		NoPIN:       "no_pin",
		TokenIssued: "token_issued",
		PINIssued:   "pin_issued",
		Verified:    "verified",
		Revoked:     "revoked",
	}
}

func ParseState(s string) (State, bool) {
	for state, label := range getStateStrings() {
		if label == s {
			return state, true
		}
	}
	return UnknownState, false
}

func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsClosed reports whether no further issuance is possible.
func (s State) IsClosed() bool {
	return s == Verified || s == Revoked
}
