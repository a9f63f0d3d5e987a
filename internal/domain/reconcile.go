package domain

// ReconcileOutcome tags the result of a profile reconciliation run
type ReconcileOutcome string

const (
	// ReconcileNoUser means no session was active. This is a valid idle
	// state, not an error.
	ReconcileNoUser ReconcileOutcome = "no_user"
	// ReconcileCreated means the profile row was absent and the reconciler
	// fallback-created it.
	ReconcileCreated ReconcileOutcome = "created"
	// ReconcileUpdated means at least one empty field was filled in.
	ReconcileUpdated ReconcileOutcome = "updated"
	// ReconcileUnchanged means the row already held every candidate value;
	// the run performed zero writes.
	ReconcileUnchanged ReconcileOutcome = "unchanged"
)

// ReconcileResult reports what a reconciliation run did
type ReconcileResult struct {
	Outcome ReconcileOutcome `json:"outcome"`
	// Fallback is set when the row was created client-side because the
	// sign-up trigger had not run.
	Fallback      bool     `json:"fallback,omitempty"`
	ChangedFields []string `json:"changed_fields,omitempty"`
}
