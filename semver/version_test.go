package semver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"1.2.3", false},
		{"v1.2.3", false},
		{"1.2.3-alpha+build", false},
		{"not-a-version", true},
		{"1.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestLooksLikeSemver(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1.2.3", true},
		{"v1.2.3", true},
		{"1.2", false},
		{"garbage", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := LooksLikeSemver(tt.in); got != tt.want {
				t.Fatalf("LooksLikeSemver(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	a := mustParse(t, "1.2.3")
	b := mustParse(t, "1.3.0")

	if !a.LT(b) {
		t.Fatalf("expected %s < %s", a, b)
	}

	if !b.GT(a) {
		t.Fatalf("expected %s > %s", b, a)
	}

	if !a.EQ(mustParse(t, "1.2.3")) {
		t.Fatalf("expected equal versions to compare equal")
	}
}

func mustParse(t *testing.T, s string) Version {
	t.Helper()

	v, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}

	return v
}
