package semver

import "testing"

func TestRequirementSatisfies(t *testing.T) {
	tests := []struct {
		req    string
		accept []string
		reject []string
	}{
		{
			req:    "^1.2.3",
			accept: []string{"1.2.3", "1.2.4", "1.9.0"},
			reject: []string{"1.2.2", "2.0.0"},
		},
		{
			req:    "^0.2.3",
			accept: []string{"0.2.3", "0.2.9"},
			reject: []string{"0.2.2", "0.3.0"},
		},
		{
			req:    "^0.0.3",
			accept: []string{"0.0.3"},
			reject: []string{"0.0.4", "0.1.0"},
		},
		{
			req:    "~1.2.3",
			accept: []string{"1.2.3", "1.2.9"},
			reject: []string{"1.2.2", "1.3.0"},
		},
		{
			req:    "~1.2",
			accept: []string{"1.2.0", "1.2.9"},
			reject: []string{"1.3.0"},
		},
		{
			req:    ">=1.2.0",
			accept: []string{"1.2.0", "2.0.0"},
			reject: []string{"1.1.9"},
		},
		{
			req:    "<2.0.0",
			accept: []string{"1.9.9"},
			reject: []string{"2.0.0", "2.0.1"},
		},
		{
			req:    "=1.2.3",
			accept: []string{"1.2.3"},
			reject: []string{"1.2.4"},
		},
		{
			req:    "1.2.3",
			accept: []string{"1.2.3"},
			reject: []string{"1.2.4"},
		},
		{
			req:    "*",
			accept: []string{"0.0.1", "1.2.3", "99.0.0"},
			reject: nil,
		},
		{
			req:    "1.*",
			accept: []string{"1.0.0", "1.9.9"},
			reject: []string{"2.0.0", "0.9.9"},
		},
		{
			req:    "1.2.*",
			accept: []string{"1.2.0", "1.2.9"},
			reject: []string{"1.3.0", "1.1.9"},
		},
		{
			req:    ">=1.0.0,<2.0.0",
			accept: []string{"1.0.0", "1.5.0"},
			reject: []string{"2.0.0", "0.9.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.req, func(t *testing.T) {
			r, err := ParseRequirement(tt.req)
			if err != nil {
				t.Fatalf("ParseRequirement(%q): %v", tt.req, err)
			}

			for _, a := range tt.accept {
				if !r.Satisfies(mustParse(t, a)) {
					t.Errorf("%q should satisfy %q", tt.req, a)
				}
			}

			for _, rej := range tt.reject {
				if r.Satisfies(mustParse(t, rej)) {
					t.Errorf("%q should not satisfy %q", tt.req, rej)
				}
			}
		})
	}
}

func TestParseRequirementErrors(t *testing.T) {
	tests := []string{"", "   ", "^1.2.3,", ">=", "abc"}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseRequirement(in); err == nil {
				t.Fatalf("expected error for %q", in)
			}
		})
	}
}
