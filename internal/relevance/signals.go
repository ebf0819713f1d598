// Package relevance classifies curated items for regional relevance and
// computes their ranking score from weighted keyword signal tables.
//
// The tables are data, not logic: they ship as versioned defaults and
// can be replaced wholesale through configuration without touching the
// classifier.
package relevance

import (
	"regexp"
	"strings"

	"almanac/internal/textutil"

	"github.com/spf13/viper"
)

// SignalGroup is a weighted keyword list. A group contributes its
// weight once when any of its keywords match.
type SignalGroup struct {
	Name     string   `mapstructure:"name"`
	Weight   int      `mapstructure:"weight"`
	Keywords []string `mapstructure:"keywords"`
}

// Signals holds the full classifier table set for one deployment
// region plus the region-independent newsworthiness lists.
type Signals struct {
	// AnchorTerms are a boolean region match: place names,
	// institutions, historical figures, legal terms.
	AnchorTerms []string `mapstructure:"anchor_terms"`
	// Groups are weighted per-category keyword groups.
	Groups []SignalGroup `mapstructure:"signal_groups"`
	// HighImport keywords add a flat bonus on top of group weights.
	HighImport []string `mapstructure:"high_import"`
	// Threshold is the minimum weighted group score that counts as
	// regionally relevant without an anchor-term match.
	Threshold int `mapstructure:"threshold"`
	// Newsworthy keywords grant the general newsworthiness boost.
	Newsworthy []string `mapstructure:"newsworthy"`
	// GlobalTerms mark globally significant phrasing (small boost).
	GlobalTerms []string `mapstructure:"global_terms"`
}

// defaultSignals targets an India-focused deployment. Swap the tables
// via the region.* config keys to retarget the classifier.
var defaultSignals = Signals{
	AnchorTerms: []string{
		"india", "indian", "bharat", "hindustan", "delhi", "new delhi", "mumbai", "bombay",
		"kolkata", "calcutta", "chennai", "madras", "bengal", "punjab", "gujarat", "maharashtra",
		"karnataka", "tamil nadu", "uttar pradesh", "bihar", "jharkhand", "odisha", "kerala",
		"andhra", "telangana", "assam", "isro", "drdo", "iit", "iisc", "mughal", "british raj",
		"nehru", "gandhi", "tagore", "ambedkar", "patel", "bose", "kalam", "dhoni", "tendulkar",
		"bollywood", "ipl", "swadeshi", "quit india", "partition", "article 370", "gst",
		"reserve bank", "rbi", "aadhaar", "niti aayog", "planning commission", "kargil",
		"pokhran", "ram mandir", "lok sabha", "rajya sabha", "constitution of india",
		"supreme court of india",
	},
	Groups: []SignalGroup{
		{Name: "political", Weight: 18, Keywords: []string{
			"parliament", "supreme court", "election commission", "constitutional",
			"article 370", "constitution bench", "prime minister of india", "president of india",
		}},
		{Name: "economic", Weight: 14, Keywords: []string{
			"rbi", "budget", "gst", "demonetisation", "demonetization",
			"liberalisation", "liberalization", "disinvestment", "economic policy",
		}},
		{Name: "space", Weight: 16, Keywords: []string{
			"isro", "chandrayaan", "mangalyaan", "mars orbiter mission", "satellite", "pslv", "gslv",
		}},
		{Name: "defense", Weight: 10, Keywords: []string{
			"indian army", "indian navy", "indian air force", "border",
			"surgical strike", "kargil", "pokhran", "nuclear test",
		}},
		{Name: "social", Weight: 9, Keywords: []string{
			"reservation", "women rights", "education", "healthcare", "aadhaar", "right to privacy",
		}},
		{Name: "culture", Weight: 8, Keywords: []string{
			"bollywood", "cricket", "festivals", "heritage", "hindi cinema", "ipl", "world cup",
		}},
	},
	HighImport: []string{
		"article 370", "gst", "section 377", "right to privacy", "chandrayaan", "mangalyaan",
		"pokhran", "kargil", "constitution of india", "ram mandir", "supreme court",
	},
	Threshold: 8,
	Newsworthy: []string{
		"apollo", "sputnik", "chandrayaan", "mangalyaan", "isro", "nasa", "satellite",
		"nobel prize", "world war", "treaty", "independence", "constitution", "supreme court",
		"budget", "earthquake", "cyclone", "flood", "olympic", "world cup",
	},
	GlobalTerms: []string{
		"world war", "treaty", "armistice", "nato", "united nations", "apollo", "sputnik",
		"moon landing", "nobel", "revolution", "cold war", "olympics", "pandemic",
		"constitution", "independence",
	},
}

// battleRe marks generic military-history phrasing that gets
// deprioritized and capped during selection.
var battleRe = regexp.MustCompile(`(?i)\b(battle|siege|crusade|skirmish)\b`)

// Classifier scores text against one set of signal tables.
type Classifier struct {
	signals Signals
}

// NewClassifier returns a classifier over the default tables, with any
// region.* configuration keys applied on top.
func NewClassifier() *Classifier {
	s := defaultSignals
	if viper.IsSet("region.anchor_terms") {
		s.AnchorTerms = viper.GetStringSlice("region.anchor_terms")
	}
	if viper.IsSet("region.high_import") {
		s.HighImport = viper.GetStringSlice("region.high_import")
	}
	if viper.IsSet("region.newsworthy") {
		s.Newsworthy = viper.GetStringSlice("region.newsworthy")
	}
	if viper.IsSet("region.global_terms") {
		s.GlobalTerms = viper.GetStringSlice("region.global_terms")
	}
	if viper.IsSet("region.threshold") {
		s.Threshold = viper.GetInt("region.threshold")
	}
	if viper.IsSet("region.signal_groups") {
		var groups []SignalGroup
		if err := viper.UnmarshalKey("region.signal_groups", &groups); err == nil && len(groups) > 0 {
			s.Groups = groups
		}
	}
	return &Classifier{signals: s}
}

// NewClassifierWithSignals returns a classifier over explicit tables.
func NewClassifierWithSignals(s Signals) *Classifier {
	return &Classifier{signals: s}
}

func includesAny(normalized string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}

// MatchesAnchor reports whether the text hits a region anchor term.
func (c *Classifier) MatchesAnchor(text string) bool {
	return includesAny(textutil.Norm(text), c.signals.AnchorTerms)
}

// SignalScore computes the weighted keyword-group score for text:
// each matching group adds its weight, high-import terms add 10 and an
// anchor match adds 8.
func (c *Classifier) SignalScore(text string) int {
	x := textutil.Norm(text)
	score := 0
	for _, g := range c.signals.Groups {
		if includesAny(x, g.Keywords) {
			score += g.Weight
		}
	}
	if includesAny(x, c.signals.HighImport) {
		score += 10
	}
	if includesAny(x, c.signals.AnchorTerms) {
		score += 8
	}
	return score
}

// IsRegionallyRelevant combines the anchor match with the weighted
// group score so region-specific but non-obvious phrasing still
// qualifies while generic global terms do not.
func (c *Classifier) IsRegionallyRelevant(text string) bool {
	if c.MatchesAnchor(text) {
		return true
	}
	return c.SignalScore(text) >= c.signals.Threshold
}

// IsNewsworthy reports whether text matches the general
// newsworthiness keyword list.
func (c *Classifier) IsNewsworthy(text string) bool {
	return includesAny(textutil.Norm(text), c.signals.Newsworthy)
}

// IsGlobalSignal reports whether text carries globally significant
// phrasing.
func (c *Classifier) IsGlobalSignal(text string) bool {
	return includesAny(textutil.Norm(text), c.signals.GlobalTerms)
}

// IsBattleText reports whether text reads like generic military
// history.
func IsBattleText(text string) bool {
	return battleRe.MatchString(text)
}
