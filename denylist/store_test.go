package denylist

import (
	"sync"
	"testing"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Version:     "2024-06-01",
		LastUpdated: "2024-06-01T00:00:00Z",
		Domains: []Entry{
			{Domain: "evil.com", Category: CategoryPhishing},
			{Domain: "dropper.net", Category: CategoryMalware, Description: "APK dropper"},
			{Domain: "Casino-Win.xyz", Category: CategoryGambling},
		},
	}
}

func TestLookupExactAndAncestor(t *testing.T) {
	store := NewStore()
	store.Replace(testSnapshot())

	testCases := []struct {
		name  string
		host  string
		found bool
		want  string
	}{
		{"exact match", "evil.com", true, "evil.com"},
		{"subdomain matches parent entry", "login.evil.com", true, "evil.com"},
		{"deep subdomain matches parent entry", "a.b.login.evil.com", true, "evil.com"},
		{"www prefix normalized", "www.evil.com", true, "evil.com"},
		{"entry casing normalized", "casino-win.xyz", true, "casino-win.xyz"},
		{"sibling domain misses", "notevil.com", false, ""},
		{"suffix-only never matches", "com", false, ""},
		{"empty host", "", false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			match, ok := store.Lookup(tc.host)
			if ok != tc.found {
				t.Fatalf("Lookup(%q) found=%v, want %v", tc.host, ok, tc.found)
			}
			if ok && match.Domain != tc.want {
				t.Errorf("Lookup(%q) matched %q, want %q", tc.host, match.Domain, tc.want)
			}
		})
	}
}

func TestBaselineAlwaysLoaded(t *testing.T) {
	store := NewStore()

	if _, ok := store.Lookup("undangan-digital.net"); !ok {
		t.Fatal("expected baseline entry to match before any sync")
	}

	// Baseline survives a snapshot replace.
	store.Replace(testSnapshot())
	if _, ok := store.Lookup("undangan-digital.net"); !ok {
		t.Fatal("expected baseline entry to survive snapshot replace")
	}
}

func TestSnapshotOverridesBaseline(t *testing.T) {
	store := NewStore()
	store.Replace(Snapshot{
		Version: "v2",
		Domains: []Entry{
			{Domain: "undangan-digital.net", Category: CategoryScam, Description: "recategorized"},
		},
	})

	match, ok := store.Lookup("undangan-digital.net")
	if !ok {
		t.Fatal("expected match")
	}
	if match.Category != CategoryScam {
		t.Errorf("expected snapshot category to win, got %s", match.Category)
	}
}

func TestUnknownCategoryNormalized(t *testing.T) {
	store := NewStore()
	store.Replace(Snapshot{
		Version: "v3",
		Domains: []Entry{{Domain: "weird.example", Category: "made-up"}},
	})

	match, ok := store.Lookup("weird.example")
	if !ok {
		t.Fatal("expected match")
	}
	if match.Category != CategoryUnknown {
		t.Errorf("expected unknown category, got %s", match.Category)
	}
}

func TestConcurrentLookupDuringReplace(t *testing.T) {
	store := NewStore()
	store.Replace(testSnapshot())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				store.Replace(testSnapshot())
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		if _, ok := store.Lookup("login.evil.com"); !ok {
			t.Error("lookup missed during concurrent replace")
			break
		}
	}

	close(stop)
	wg.Wait()
}
