package pipeline

import (
	"regexp"
	"strings"

	"almanac/internal/core"
	"almanac/internal/textutil"
)

var (
	treatyTitleRe       = regexp.MustCompile(`(?i)treaty|accord|agreement`)
	treatyTextRe        = regexp.MustCompile(`(?i)treaty|accord|agreement|signed`)
	independenceRe      = regexp.MustCompile(`independence|declared independence|proclaimed`)
	independenceTitleRe = regexp.MustCompile(`(?i)independence`)
	assassinationRe     = regexp.MustCompile(`assassin|assassinated|assassination`)
	launchRe            = regexp.MustCompile(`launched?|launch|inaugurat`)
	foundingRe          = regexp.MustCompile(`founded|establish|formed|create`)
	startRe             = regexp.MustCompile(`begins|began|start|started|commence`)
	victoryRe           = regexp.MustCompile(`wins|won|victory|defeat`)
	electionRe          = regexp.MustCompile(`elected|sworn in|inaugurat`)
	disasterRe          = regexp.MustCompile(`earthquake|cyclone|flood|tsunami|explosion|bomb`)
	doubleIndepRe       = regexp.MustCompile(`(?i)^Independence of Independence of`)
)

// SemanticTitle rewrites a raw record title into a display phrase
// derived from its category and excerpt cues. The rewrite is a pure
// display transform: matching and scoring keep using the original
// excerpt text.
func SemanticTitle(category core.Category, rawTitle, rawText string) string {
	base := strings.Join(strings.Fields(rawTitle), " ")
	text := textutil.Norm(rawText)

	switch category {
	case core.CategoryBirth:
		return "Birthday of " + base
	case core.CategoryDeath:
		return "Death of " + base
	}

	switch {
	case treatyTitleRe.MatchString(base) || treatyTextRe.MatchString(text):
		if strings.Contains(text, "signed") {
			return base + " signed"
		}
		return base
	case independenceRe.MatchString(text) || independenceTitleRe.MatchString(base):
		return doubleIndepRe.ReplaceAllString("Independence of "+base, "Independence of")
	case assassinationRe.MatchString(text):
		return "Assassination of " + base
	case launchRe.MatchString(text):
		return "Launch of " + base
	case foundingRe.MatchString(text):
		return "Founding of " + base
	case startRe.MatchString(text):
		return "Start of " + base
	case victoryRe.MatchString(text):
		return "Victory: " + base
	case electionRe.MatchString(text):
		return "Swearing-in/Election of " + base
	case disasterRe.MatchString(text):
		return "Major event: " + base
	default:
		return "Event: " + base
	}
}
