package social

import "testing"

func TestParseFollowerCount(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"12.5K Followers, 340 Following", 12_500},
		{"2M followers", 2_000_000},
		{"1.2B Followers", 1_200_000_000},
		{"1,234 followers", 1_234},
		{"848 Followers", 848},
		{"no numbers here", 0},
		{"", 0},
	}

	for _, tc := range cases {
		if got := ParseFollowerCount(tc.text); got != tc.want {
			t.Errorf("ParseFollowerCount(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestHandleFor(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Acme Corp.", "acmecorp"},
		{"Stark & Sons", "starksons"},
		{"42nd Street Deli", "42ndstreetdeli"},
		{"---", ""},
	}

	for _, tc := range cases {
		if got := handleFor(tc.name); got != tc.want {
			t.Errorf("handleFor(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestProfileURL(t *testing.T) {
	if got := profileURL("tiktok", "acme"); got != "https://www.tiktok.com/@acme" {
		t.Errorf("tiktok url = %q", got)
	}
	if got := profileURL("myspace", "acme"); got != "" {
		t.Errorf("unknown platform url = %q, want empty", got)
	}
}
