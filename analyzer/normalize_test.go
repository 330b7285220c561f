package analyzer

import "testing"

func TestNormalizeBasics(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		wantHost    string
		wantASCII   string
		punycode    bool
		nonASCII    bool
	}{
		{
			name:      "plain https url",
			input:     "https://Example.COM/path",
			wantHost:  "example.com",
			wantASCII: "example.com",
		},
		{
			name:      "www stripped",
			input:     "https://www.example.com",
			wantHost:  "example.com",
			wantASCII: "example.com",
		},
		{
			name:      "bare domain gets scheme retry",
			input:     "example.com",
			wantHost:  "example.com",
			wantASCII: "example.com",
		},
		{
			name:      "digit substitution folded",
			input:     "https://g00gle.com",
			wantHost:  "g00gle.com",
			wantASCII: "google.com",
		},
		{
			name:      "one for ell folded",
			input:     "https://paypa1.com",
			wantHost:  "paypa1.com",
			wantASCII: "paypal.com",
		},
		{
			name:      "cyrillic homoglyph folded",
			input:     "https://gооgle.com",
			wantHost:  "gооgle.com",
			wantASCII: "google.com",
			nonASCII:  true,
		},
		{
			name:     "punycode label flagged",
			input:    "https://xn--e1afmkfd.com",
			wantHost: "xn--e1afmkfd.com",
			punycode: true,
			nonASCII: true,
		},
		{
			name:      "diacritics stripped",
			input:     "https://exämple.com",
			wantHost:  "exämple.com",
			wantASCII: "example.com",
			nonASCII:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nh, _ := Normalize(tc.input)
			if nh.Host != tc.wantHost {
				t.Errorf("Host = %q, want %q", nh.Host, tc.wantHost)
			}
			if tc.wantASCII != "" && nh.ASCIIForm != tc.wantASCII {
				t.Errorf("ASCIIForm = %q, want %q", nh.ASCIIForm, tc.wantASCII)
			}
			if nh.WasPunycode != tc.punycode {
				t.Errorf("WasPunycode = %v, want %v", nh.WasPunycode, tc.punycode)
			}
			if nh.WasNonASCII != tc.nonASCII {
				t.Errorf("WasNonASCII = %v, want %v", nh.WasNonASCII, tc.nonASCII)
			}
		})
	}
}

func TestNormalizeNeverFails(t *testing.T) {
	inputs := []string{"", "   ", "not-a-url", "javascript:alert(1)", "http://", "%%%", "a b c"}

	for _, input := range inputs {
		nh, _ := Normalize(input)
		if nh.ASCIIForm == "" && nh.Raw != "" && input != "" {
			// Raw input should always survive into the comparison form in some shape.
			t.Errorf("Normalize(%q) produced empty ASCIIForm with non-empty raw %q", input, nh.Raw)
		}
	}
}

func TestParseLenientRecoversBareDomains(t *testing.T) {
	u := parseLenient("bca-promo.xyz/path")
	if u == nil || u.Hostname() != "bca-promo.xyz" {
		t.Fatalf("expected host bca-promo.xyz, got %v", u)
	}
}
