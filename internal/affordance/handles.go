// Package affordance implements the tagged-variant affordance registry and
// its pure evaluation math (spec.md §4.8/§9: "Dynamic dispatch on
// affordances -> tagged-variant registry... register each affordance as a
// value... Validation runs at registration. This keeps the set closed and
// inspectable.").
//
// This package knows nothing about pkg.Entity — it operates on primitive
// inputs (affinity, valuations) so that pkg/affordance.go can assemble
// those inputs from live entity state without an import cycle.
package affordance

// Handle names the closed set of mechanical variables this system may ever
// modulate (spec.md §6). An affordance referencing any other name fails
// validation at registration.
type Handle string

const (
	HandleRoomTravelTimeModifier   Handle = "room.travel_time_modifier"
	HandleRoomRedirectTarget       Handle = "room.redirect_target"
	HandleRoomEncounterRateModifier Handle = "room.encounter_rate_modifier"
	HandleNPCAggroRadiusModifier   Handle = "npc.aggro_radius_modifier"
	HandleHarvestYieldModifier     Handle = "harvest.yield_modifier"
	HandleSpellPowerModifier       Handle = "spell.power_modifier"
	HandleSpellBackfireChance      Handle = "spell.backfire_chance"
	HandleRestHealingModifier      Handle = "rest.healing_modifier"
	HandleLootQualityModifier      Handle = "loot.quality_modifier"
	HandleActorStaminaModifier     Handle = "actor.stamina_modifier"
	HandleActorLuckModifier        Handle = "actor.luck_modifier"
	HandleActionSkillModifier      Handle = "action.skill_modifier"
)

var validHandles = map[Handle]struct{}{
	HandleRoomTravelTimeModifier:    {},
	HandleRoomRedirectTarget:        {},
	HandleRoomEncounterRateModifier: {},
	HandleNPCAggroRadiusModifier:    {},
	HandleHarvestYieldModifier:      {},
	HandleSpellPowerModifier:        {},
	HandleSpellBackfireChance:       {},
	HandleRestHealingModifier:       {},
	HandleLootQualityModifier:       {},
	HandleActorStaminaModifier:      {},
	HandleActorLuckModifier:         {},
	HandleActionSkillModifier:       {},
}

// IsValidHandle reports whether h is a member of the closed handle set.
func IsValidHandle(h Handle) bool {
	_, ok := validHandles[h]
	return ok
}
