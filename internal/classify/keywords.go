package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Rule binds a category to the substring triggers that select it.
type Rule struct {
	Category string   `json:"category"`
	Triggers []string `json:"triggers"`
}

// KeywordTable is an ordered list of rules consulted before the
// statistical model. Matching is case-insensitive substring containment
// and the first rule (in declaration order) with any firing trigger
// wins; there is no scoring and no longest-match preference.
type KeywordTable struct {
	rules []Rule
}

// NewKeywordTable builds a table from ordered rules. Triggers are
// lowercased once so matching never has to.
func NewKeywordTable(rules []Rule) *KeywordTable {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		triggers := make([]string, 0, len(r.Triggers))
		for _, trig := range r.Triggers {
			trig = strings.ToLower(strings.TrimSpace(trig))
			if trig != "" {
				triggers = append(triggers, trig)
			}
		}
		normalized[i] = Rule{Category: r.Category, Triggers: triggers}
	}
	return &KeywordTable{rules: normalized}
}

// DefaultKeywordTable returns the built-in rule set. Order matters:
// earlier categories take precedence.
func DefaultKeywordTable() *KeywordTable {
	return NewKeywordTable([]Rule{
		{Category: "dining", Triggers: []string{"mart", "grocery", "convenience", "deli", "chicken", "pizza", "burger", "restaurant", "lunch", "dinner", "kitchen"}},
		{Category: "transport", Triggers: []string{"taxi", "bus", "subway", "metro", "uber", "parking", "toll", "fuel", "gas station"}},
		{Category: "shopping", Triggers: []string{"amazon", "store", "outlet", "apparel", "clothing", "shoes", "shopping"}},
		{Category: "leisure", Triggers: []string{"cinema", "movie", "theater", "karaoke", "bowling", "arcade", "amusement"}},
		{Category: "cafe", Triggers: []string{"starbucks", "cafe", "coffee", "espresso", "latte", "bakery"}},
		{Category: "subscription", Triggers: []string{"netflix", "youtube", "spotify", "subscription", "premium", "membership"}},
		{Category: "medical", Triggers: []string{"hospital", "pharmacy", "dental", "clinic", "doctor"}},
		{Category: "education", Triggers: []string{"academy", "course", "tuition", "lecture", "bookstore", "textbook"}},
		{Category: "salary", Triggers: []string{"salary", "payroll", "wages", "bonus", "incentive"}},
	})
}

// LoadKeywordRules reads an ordered rule list from a JSON file. The
// file holds an array of {category, triggers} objects; array order is
// the precedence order.
func LoadKeywordRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword rules: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse keyword rules: %w", err)
	}
	return rules, nil
}

// Match returns the first category whose trigger list contains a
// substring of the description, or false when no trigger fires.
func (t *KeywordTable) Match(description string) (string, bool) {
	desc := strings.ToLower(description)
	for _, rule := range t.rules {
		for _, trig := range rule.Triggers {
			if strings.Contains(desc, trig) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// Categories returns the rule categories in declaration order.
func (t *KeywordTable) Categories() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Category
	}
	return out
}
