package player

// Player is deduplicated by canonical name within a pipeline run. Name
// keeps the first-seen original casing; the remaining profile fields are
// filled only when a source provides them.
type Player struct {
	ID          string
	Name        string
	BirthDate   string
	Nationality string
	Position    string
}
