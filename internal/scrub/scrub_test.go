package scrub

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

func TestRandomTextShape(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))

	for i := 0; i < 200; i++ {
		text := g.Next(domain.Preferences{})
		words := strings.Split(text, " ")
		if len(words) < minWords || len(words) > maxWords {
			t.Fatalf("%d words in %q, want %d-%d", len(words), text, minWords, maxWords)
		}
		for _, w := range words {
			if len(w) < minWordLen || len(w) > maxWordLen {
				t.Fatalf("word %q has length %d, want %d-%d", w, len(w), minWordLen, maxWordLen)
			}
			for _, r := range w {
				if r < 'a' || r > 'z' {
					t.Fatalf("word %q contains non-lowercase rune %q", w, r)
				}
			}
		}
	}
}

func TestCustomTextVerbatim(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))
	prefs := domain.Preferences{CustomText: "gone."}

	for i := 0; i < 10; i++ {
		if diff := cmp.Diff("gone.", g.Next(prefs)); diff != "" {
			t.Errorf("custom text mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestAdvertiseAlways(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))
	prefs := domain.Preferences{Advertise: true, AdChance: 1.0, CustomText: "ignored"}

	for i := 0; i < 20; i++ {
		text := g.Next(prefs)
		if !IsAdMessage(text) {
			t.Fatalf("expected promotional message, got %q", text)
		}
	}
}

func TestAdvertiseNever(t *testing.T) {
	// AdChance below any possible roll: always falls through to custom text.
	g := New(rand.New(rand.NewSource(1)))
	prefs := domain.Preferences{Advertise: true, AdChance: 1e-12, CustomText: "fallback"}

	hits := 0
	for i := 0; i < 100; i++ {
		if IsAdMessage(g.Next(prefs)) {
			hits++
		}
	}
	if hits > 0 {
		t.Errorf("got %d promotional messages with near-zero chance", hits)
	}
}

func TestAdvertiseMixes(t *testing.T) {
	g := New(rand.New(rand.NewSource(42)))
	prefs := domain.Preferences{Advertise: true}

	ads, fillers := 0, 0
	for i := 0; i < 500; i++ {
		if IsAdMessage(g.Next(prefs)) {
			ads++
		} else {
			fillers++
		}
	}
	// Default 50% chance: both outcomes must show up in 500 draws.
	if ads == 0 || fillers == 0 {
		t.Errorf("ads=%d fillers=%d, want both nonzero", ads, fillers)
	}
}

func TestFreshTextPerCall(t *testing.T) {
	g := New(rand.New(rand.NewSource(7)))
	a := g.Next(domain.Preferences{})
	b := g.Next(domain.Preferences{})
	if a == b {
		t.Errorf("consecutive calls returned identical text %q", a)
	}
}
