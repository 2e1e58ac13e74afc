package domain

import "time"

type ChangeKind string

const (
	// ChangeTrades signals a mutation of one owner's trade ledger.
	ChangeTrades ChangeKind = "trades"
	// ChangeQuotes signals a wholesale replacement of the quote set.
	// Quote changes are global: OwnerID is empty.
	ChangeQuotes ChangeKind = "quotes"
	// ChangeBaseline signals an explicit baseline update for one owner.
	ChangeBaseline ChangeKind = "baseline"
)

// ChangeEvent notifies subscribers that a source changed. Events carry no
// payload; consumers re-fetch the mutated source so they always read a
// consistent full copy.
type ChangeEvent struct {
	Kind    ChangeKind
	OwnerID string
	At      time.Time
}

// Matches reports whether the event concerns the given owner scope. Quote
// changes concern every scope.
func (e ChangeEvent) Matches(ownerID string) bool {
	return e.Kind == ChangeQuotes || e.OwnerID == ownerID
}
