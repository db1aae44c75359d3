package game

// EquipEvent is delivered when an actor equips or unequips a form.
// Equipping the Night Eye power is not the same as casting it; the
// engine tracks these for diagnostics only.
type EquipEvent struct {
	Actor      FormID
	BaseObject FormID
	Equipped   bool
}

// SpellCastEvent is delivered when an actor finishes casting a spell.
type SpellCastEvent struct {
	Caster FormID
	Spell  FormID
}

// EffectEvent is delivered when an active effect is applied to or removed
// from an actor. Applied=false means removal.
type EffectEvent struct {
	Target     FormID
	Effect     FormID
	InstanceID uint32
	Applied    bool
}
