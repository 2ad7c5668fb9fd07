package commands

// SweepReport summarises one batch of independent per-parcel operations.
type SweepReport struct {
	Found int
	// Claimed counts parcels whose state change was committed, whether or not
	// the follow-up notification went out. A later batch will not find them again.
	Claimed   int
	Succeeded int
	Failed    int
	Skipped   int
	// Interrupted is set when the context ended before the batch was done.
	Interrupted bool
}
