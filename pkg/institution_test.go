package affinity

import "testing"

func TestInstitutionRefreshPushesBiasOntoConstituents(t *testing.T) {
	cfg, err := NewConfig(WithChannelWeights(ChannelWeights{Personal: 0.4, Group: 0.3, Behavior: 0.2, Institutional: 0.1}))
	if err != nil {
		t.Fatal(err)
	}

	room, err := NewLocation("room_a", map[string]float64{"gift.give": 1})
	if err != nil {
		t.Fatal(err)
	}
	room.LogEvent(cfg, Event{
		Type: "gift.give", ActorID: "player_1", Intensity: 1, Timestamp: 0,
		ActorTags: map[string]struct{}{"faction.ironguard": {}},
	})

	insts := NewInstitutionRegistry()
	insts.Register("ironguard", cfg.Institutions, room)
	insts.Observe("ironguard", "faction.ironguard")

	before := room.ComputeAffinity(cfg, 10, "player_2", map[string]struct{}{"faction.ironguard": {}})

	if err := insts.Refresh(cfg, "ironguard", 10); err != nil {
		t.Fatal(err)
	}

	stance := insts.Stance("ironguard", "faction.ironguard")
	if stance == 0 {
		t.Fatal("expected a nonzero stance after refreshing against a favorably-disposed constituent")
	}

	after := room.ComputeAffinity(cfg, 10, "player_2", map[string]struct{}{"faction.ironguard": {}})
	if after <= before {
		t.Fatalf("expected institutional bias to push a stranger's affinity up: before=%v after=%v", before, after)
	}
}

func TestInstitutionRefreshAllCoversEveryRegisteredInstitution(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}
	room, err := NewLocation("room_b", map[string]float64{"gift.give": 1})
	if err != nil {
		t.Fatal(err)
	}

	insts := NewInstitutionRegistry()
	insts.Register("ironguard", cfg.Institutions, room)
	insts.Register("merchants", cfg.Institutions, room)
	insts.Observe("ironguard", "class.ranger")
	insts.Observe("merchants", "class.ranger")

	if err := insts.RefreshAll(cfg, 5); err != nil {
		t.Fatal(err)
	}
}
