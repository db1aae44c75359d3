package game

// World is the read-only slice of the host object model the engine needs.
//
// Lookups may fail at any time (forms load and unload with the game);
// callers skip and log on a miss.
type World interface {
	// LookupSpell resolves a spell form by identifier.
	LookupSpell(id FormID) (Spell, bool)

	// ActorEffects returns the live active-effect list for an actor.
	// A nil or empty slice means the actor has no tracked effects (or is
	// not loaded); callers cannot tell the two cases apart.
	ActorEffects(actor FormID) []ActiveEffect
}

// Renderer is the external rendering API surface: one boolean shader
// parameter, set by file and parameter name.
//
// SetParameter returns true only when the renderer acknowledged the set.
// A false return means the caller must retry on a later frame; the
// parameter is idempotent on the receiver side.
type Renderer interface {
	SetParameter(file, name string, value bool) bool
}

// Notifier shows short on-screen feedback to the player.
type Notifier interface {
	Notify(msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string) {}
