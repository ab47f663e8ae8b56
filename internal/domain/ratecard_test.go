package domain

import "testing"

func ptr(v float64) *float64 { return &v }

func TestRateTier_Rate(t *testing.T) {
	tests := []struct {
		name string
		tier RateTier
		want float64
	}{
		{"empty tier is free", RateTier{}, 0},
		{"fixed", FixedTier(45), 45},
		{"range uses minimum", RateTier{Min: ptr(30), Max: ptr(50)}, 30},
		{"only maximum", RateTier{Max: ptr(50)}, 50},
		{"explicit zero", FixedTier(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Rate(); got != tt.want {
				t.Errorf("Rate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRateCard_RateFor(t *testing.T) {
	card := NewRateCard("Design", "studio", 60)

	if got := card.RateFor(TierFriends); got != 60 {
		t.Errorf("friends without tier should fall back to standard, got %v", got)
	}

	card.Friends = FixedTier(40)
	if got := card.RateFor(TierFriends); got != 40 {
		t.Errorf("RateFor(friends) = %v, want 40", got)
	}
	if got := card.RateFor("unknown"); got != 60 {
		t.Errorf("RateFor(unknown) = %v, want 60", got)
	}
}

func TestRateCard_Validate(t *testing.T) {
	card := NewRateCard("", "", 10)
	if err := card.Validate(); err == nil {
		t.Errorf("expected error for empty service")
	}

	card = NewRateCard("Printing", "3d", 10)
	card.Friends = RateTier{Min: ptr(20), Max: ptr(10)}
	if err := card.Validate(); err == nil {
		t.Errorf("expected error for inverted range")
	}

	card.Friends = RateTier{Min: ptr(-1)}
	if err := card.Validate(); err == nil {
		t.Errorf("expected error for negative rate")
	}
}

func TestCustomer_Tier(t *testing.T) {
	c := NewCustomer("  Ada  ")
	if c.Name != "Ada" {
		t.Errorf("name not trimmed: %q", c.Name)
	}
	if c.Tier() != TierStandard {
		t.Errorf("expected standard tier")
	}
	c.IsFriend = true
	if c.Tier() != TierFriends {
		t.Errorf("expected friends tier")
	}
}
