package analyzer

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// acePrefix marks an ASCII-compatible-encoding (Punycode) DNS label.
const acePrefix = "xn--"

// confusableRunes maps characters that visually imitate ASCII letters to the
// letter they imitate. Covers the Cyrillic and Greek homoglyphs seen in the
// wild plus the common digit-for-letter substitutions.
var confusableRunes = map[rune]rune{
	// Cyrillic
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'х': 'x',
	'у': 'y', 'і': 'i', 'ѕ': 's', 'ј': 'j', 'һ': 'h', 'ԁ': 'd',
	'ԛ': 'q', 'ѡ': 'w', 'в': 'b', 'м': 'm', 'н': 'h', 'т': 't',
	// Greek
	'ο': 'o', 'α': 'a', 'ν': 'v', 'ε': 'e', 'ι': 'i', 'κ': 'k',
	'ρ': 'p', 'τ': 't', 'υ': 'u', 'χ': 'x',
	// digit-for-letter
	'0': 'o', '1': 'l', '3': 'e', '4': 'a', '5': 's', '7': 't',
}

// diacriticStripper removes combining marks after NFD decomposition, folding
// Latin-Extended characters like ä or ı́ down to their base letters.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases and parses the input, decodes Punycode labels, and
// produces the confusable-folded ASCII comparison form. It never fails: inputs
// that cannot be parsed as URLs degrade to a best-effort normalized string.
// The parsed URL is returned for the path-level scorers and may be nil.
func Normalize(raw string) (NormalizedHost, *url.URL) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))

	nh := NormalizedHost{Raw: trimmed}

	parsed := parseLenient(trimmed)

	host := trimmed
	if parsed != nil && parsed.Hostname() != "" {
		host = strings.ToLower(parsed.Hostname())
	}
	host = strings.TrimPrefix(host, "www.")
	nh.Host = host

	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, acePrefix) {
			nh.WasPunycode = true
			break
		}
	}

	// Decode ACE labels back to Unicode so homoglyphs are visible to the
	// confusable fold. Decoding failures keep the ASCII host; the xn-- flag
	// above stands on its own either way.
	unicodeHost := host
	if decoded, err := idna.Lookup.ToUnicode(host); err == nil && decoded != "" {
		unicodeHost = decoded
	}

	for _, r := range unicodeHost {
		if r > unicode.MaxASCII {
			nh.WasNonASCII = true
			break
		}
	}

	nh.ASCIIForm = foldConfusables(unicodeHost)

	return nh, parsed
}

// parseLenient attempts strict URL parsing, retrying with an https:// prefix
// for bare-domain inputs. Returns nil when no usable host can be recovered.
func parseLenient(trimmed string) *url.URL {
	if trimmed == "" {
		return nil
	}

	if u, err := url.Parse(trimmed); err == nil && u.Hostname() != "" {
		return u
	}

	if u, err := url.Parse("https://" + trimmed); err == nil && u.Hostname() != "" {
		return u
	}

	return nil
}

// foldConfusables maps look-alike runes to their ASCII equivalents and strips
// diacritics. The result is used only for comparisons; the displayed domain is
// never rewritten.
func foldConfusables(host string) string {
	stripped, _, err := transform.String(diacriticStripper, host)
	if err != nil {
		stripped = host
	}

	var b strings.Builder
	b.Grow(len(stripped))

	for _, r := range stripped {
		if mapped, ok := confusableRunes[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
