package team

// Team is a club deduplicated by canonical name within a pipeline run.
// Cross-source team identity is name equality after canonicalization and
// nothing more; Name keeps the first-seen original casing.
type Team struct {
	ID      string
	Name    string
	Country string
}
