package score

import (
	"regexp"
	"strings"
)

// PenaltyStrength scales how hard vagueness pulls scores down.
const PenaltyStrength = 4.5

var wordRe = regexp.MustCompile(`[a-z]+`)
var digitRe = regexp.MustCompile(`\d`)

var genericVerbs = map[string]bool{
	"make": true, "do": true, "write": true, "create": true,
	"build": true, "explain": true, "describe": true, "talk": true,
	"summarize": true, "implement": true, "design": true, "draft": true,
}

var detailCues = []string{
	"with", "including", "using", "for", "against", "step", "steps",
	"feature", "features", "requirements", "constraints", "kpi", "kpis",
	"diagram", "architecture", "lesson", "objectives", "assessment",
	"example", "template", "criteria", "strategy", "plan", "code",
	"review", "bug", "fix", "debug", "deployment", "performance",
	"security",
}

type textFeatures struct {
	wordCount   int
	lengthNorm  float64
	uniqueRatio float64
	genRatio    float64
	hasDetail   bool
	hasDigits   bool
}

func extractFeatures(text string) textFeatures {
	t := strings.ToLower(strings.TrimSpace(text))
	words := wordRe.FindAllString(t, -1)
	wc := len(words)

	f := textFeatures{wordCount: wc}
	f.hasDigits = digitRe.MatchString(t)
	for _, cue := range detailCues {
		if strings.Contains(t, cue) {
			f.hasDetail = true
			break
		}
	}
	if wc == 0 {
		f.genRatio = 1.0
		return f
	}

	uniq := map[string]bool{}
	generic := 0
	for _, w := range words {
		uniq[w] = true
		if genericVerbs[w] {
			generic++
		}
	}
	f.uniqueRatio = float64(len(uniq)) / float64(wc)
	f.genRatio = float64(generic) / float64(wc)
	f.lengthNorm = float64(min(wc, 64)) / 64.0
	return f
}

// VaguenessScore rates how vague a prompt is on [0,1]. Empty text is
// maximally vague.
func VaguenessScore(text string) float64 {
	f := extractFeatures(text)
	if f.wordCount == 0 {
		return 1.0
	}

	base := 0.4 * f.genRatio
	if !f.hasDetail {
		base += 0.3
	}
	if !f.hasDigits {
		base += 0.2
	}
	if f.wordCount <= 4 {
		base += 0.3
	}
	if f.uniqueRatio < 0.6 {
		base += 0.2
	}

	if base < 0 {
		return 0
	}
	if base > 1 {
		return 1
	}
	return base
}

// ApplyVaguenessPenalty is the default PenaltyFunc: it subtracts
// PenaltyStrength times the vagueness score from every dimension, then
// clips into [1,10] and rounds to one decimal.
func ApplyVaguenessPenalty(scores ScoreVector, text string) ScoreVector {
	v := VaguenessScore(text)
	out := make(ScoreVector, len(Dimensions))
	for _, d := range Dimensions {
		out[d] = round1(clip(scores[d] - PenaltyStrength*v))
	}
	return out
}
