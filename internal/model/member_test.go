package model

import (
	"encoding/json"
	"testing"
)

func TestMemberFirstName(t *testing.T) {
	tests := []struct {
		name   string
		member *Member
		want   string
	}{
		{name: "full name", member: &Member{FullName: "Paige Turner"}, want: "Paige"},
		{name: "single word", member: &Member{FullName: "Paige"}, want: "Paige"},
		{name: "padded", member: &Member{FullName: "  Ada Lovelace "}, want: "Ada"},
		{name: "empty", member: &Member{}, want: ""},
		{name: "nil", member: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.member.FirstName(); got != tt.want {
				t.Errorf("FirstName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValidTier(t *testing.T) {
	for _, tier := range Tiers {
		if !IsValidTier(tier) {
			t.Errorf("IsValidTier(%q) = false, want true", tier)
		}
	}
	for _, tier := range []string{"", "Admin", "gold"} {
		if IsValidTier(tier) {
			t.Errorf("IsValidTier(%q) = true, want false", tier)
		}
	}
}

func TestTokenResponseDecode(t *testing.T) {
	body := `{"access_token":"abc","token_type":"bearer","member":{"id":"m1","email":"a@b.com",
		"full_name":"Ann Bee","membership_tier":"vip","is_active":true,"has_logged_in":false,
		"created_at":"2025-01-02T03:04:05Z"}}`

	var resp TokenResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.AccessToken != "abc" {
		t.Errorf("AccessToken = %q, want %q", resp.AccessToken, "abc")
	}
	if !resp.Member.HasTier(TierVIP) {
		t.Errorf("Member tier = %q, want %q", resp.Member.MembershipTier, TierVIP)
	}
	if resp.Member.CreatedAt.Year() != 2025 {
		t.Errorf("CreatedAt = %v, want year 2025", resp.Member.CreatedAt)
	}
}

func TestRSVPStatusHelpers(t *testing.T) {
	s := &RSVPStatus{HasRSVP: true, RSVPStatus: RSVPAccepted, LegacyPassToken: "tok"}
	if !s.Accepted() || !s.HasPass() {
		t.Errorf("Accepted() = %v, HasPass() = %v, want true, true", s.Accepted(), s.HasPass())
	}

	declined := &RSVPStatus{HasRSVP: true, RSVPStatus: RSVPDeclined}
	if declined.Accepted() || declined.HasPass() {
		t.Error("declined RSVP should not be accepted or carry a pass")
	}

	var none *RSVPStatus
	if none.Accepted() || none.HasPass() {
		t.Error("nil status should be neither accepted nor carry a pass")
	}
}

func TestPaymentMethodsHas(t *testing.T) {
	m := &PaymentMethods{Methods: []PaymentMethod{{ID: "zelle"}, {ID: "wire_transfer"}}}
	if !m.Has("zelle") {
		t.Error("Has(zelle) = false, want true")
	}
	if m.Has("cash") {
		t.Error("Has(cash) = true, want false")
	}
}
