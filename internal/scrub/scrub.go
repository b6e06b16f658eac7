// Package scrub produces the text written over a comment or post before it
// is deleted. Deliberately unreadable: the goal is to make the original
// content unrecoverable from edit history scrapers, not to leave prose.
package scrub

import (
	"math/rand"
	"strings"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

const (
	minWords   = 2
	maxWords   = 17
	minWordLen = 3
	maxWordLen = 12

	// AdChance is the default probability of substituting a promotional
	// message when advertising is enabled.
	AdChance = 0.5
)

// adMessages is the promotional pool used when advertising is enabled.
var adMessages = []string{
	"This content was overwritten and removed with reddit-scrubber.",
	"Scrubbed with reddit-scrubber: your words, gone for good.",
	"Removed by reddit-scrubber. Take your content back.",
}

// Generator yields replacement text per the configured policy. The zero
// value uses the global random source; tests inject a seeded one.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator backed by the given source, or the global source
// when rng is nil.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Next returns the replacement text for one edit pass. Each call yields
// fresh random filler unless a fixed policy overrides it.
func (g *Generator) Next(prefs domain.Preferences) string {
	if prefs.Advertise {
		chance := prefs.AdChance
		if chance == 0 {
			chance = AdChance
		}
		if g.float64() < chance {
			return adMessages[g.intn(len(adMessages))]
		}
	}
	if prefs.CustomText != "" {
		return prefs.CustomText
	}
	return g.randomText()
}

// randomText builds 2-17 lowercase pseudo-words of 3-12 letters each.
func (g *Generator) randomText() string {
	numWords := minWords + g.intn(maxWords-minWords+1)
	words := make([]string, numWords)
	for i := range words {
		wordLen := minWordLen + g.intn(maxWordLen-minWordLen+1)
		var b strings.Builder
		for j := 0; j < wordLen; j++ {
			b.WriteByte(byte('a' + g.intn(26)))
		}
		words[i] = b.String()
	}
	return strings.Join(words, " ")
}

func (g *Generator) intn(n int) int {
	if g.rng != nil {
		return g.rng.Intn(n)
	}
	return rand.Intn(n)
}

func (g *Generator) float64() float64 {
	if g.rng != nil {
		return g.rng.Float64()
	}
	return rand.Float64()
}

// IsAdMessage reports whether text came from the promotional pool.
func IsAdMessage(text string) bool {
	for _, m := range adMessages {
		if text == m {
			return true
		}
	}
	return false
}
