// Package classify maps free text to event types, news categories and
// country tags using ordered keyword rules. Rule order is a priority policy:
// the first matching rule wins, so a message that reads like both a strike
// report and a diplomatic statement resolves to whichever type is declared
// first. Keep that in mind before reordering the tables.
package classify

import (
	"regexp"
	"strings"
)

const (
	// DefaultEventType is returned when no event rule matches.
	DefaultEventType = "intel"
	// DefaultNewsCategory is returned when no news rule matches.
	DefaultNewsCategory = "general"
	// DefaultCountry is returned when no country keyword matches.
	DefaultCountry = "iran"
)

// TypeRule binds a label to the patterns that select it. Patterns are tried
// in declaration order against lower-cased text.
type TypeRule struct {
	Label    string
	Patterns []*regexp.Regexp
}

// CountryRule maps one keyword to a country tag.
type CountryRule struct {
	Keyword string `json:"keyword"`
	Country string `json:"country"`
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// DefaultEventRules returns the built-in event type table.
func DefaultEventRules() []TypeRule {
	return []TypeRule{
		{"strike", compileAll(
			"空袭", "打击", "爆炸", "袭击", "攻击", "轰炸",
			"airstrike", "strike", "explosion", "attack", "bombing",
			"rocket", "missile", "drone",
		)},
		{"blockade", compileAll(
			"封锁", "拦截", "扣押", "登船",
			"blockade", "intercept", "seiz[uo]re", "boarding",
			"vessel.*not.*allowed", "shipping.*warning", "maritime.*alert", "naval.*warning",
			"ship.*banned", "vessel.*banned", "strait.*closed", "waterway.*closed",
			"vhf.*warning", "shipping.*lane.*closed", "passage.*denied", "transit.*banned",
			"船只.*禁止", "船舶.*警告", "海峡.*关闭", "航道.*封锁",
			"通行.*禁止", "航海.*警告",
		)},
		{"airspace", compileAll(
			"禁飞", "封空", "领空", "防空",
			"no-fly", "airspace", "air.?defen[cs]e",
		)},
		{"intel", compileAll(
			"情报", "卫星", "侦察", "雷达", "监听",
			"intelligence", "satellite", "reconnaissance", "radar",
		)},
		{"diplomatic", compileAll(
			"抗议", "谈判", "外交", "声明", "谴责", "警告",
			"protest", "negotiat", "diplomat", "statement", "condemn", "warn",
		)},
	}
}

// DefaultNewsRules returns the built-in news category table.
func DefaultNewsRules() []TypeRule {
	return []TypeRule{
		{"military", compileAll(
			"strike", "attack", "military", "空袭", "攻击",
			"war", "conflict", "battle", "warfare", "战斗", "战争",
			"missile", "drone", "rocket", "导弹", "无人机", "火箭",
		)},
		{"diplomatic", compileAll(
			"talks", "summit", "meeting", "谈判", "会议",
			"diplomat", "diplomacy", "agreement", "treaty", "外交", "协议",
			"condemn", "protest", "warning", "谴责", "抗议", "警告",
		)},
		{"humanitarian", compileAll(
			"aid", "refugee", "casualty", "援助", "难民",
			"humanitarian", "crisis", "displacement", "人道主义", "伤亡",
		)},
	}
}

// DefaultCountryRules returns the built-in keyword-to-country table.
func DefaultCountryRules() []CountryRule {
	return []CountryRule{
		{"以色列", "israel"},
		{"israel", "israel"},
		{"iran", "iran"},
		{"伊朗", "iran"},
		{"usa", "usa"},
		{"美国", "usa"},
		{"yemen", "iran"},
		{"也门", "iran"},
		{"gaza", "israel"},
		{"加沙", "israel"},
		{"lebanon", "israel"},
		{"黎巴嫩", "israel"},
		{"syria", "iran"},
		{"叙利亚", "iran"},
		{"saudi", "usa"},
		{"沙特", "usa"},
		{"uae", "usa"},
		{"阿联酋", "usa"},
	}
}

// EventType classifies text into an event type via the first matching rule.
func EventType(text string, rules []TypeRule) string {
	if label, ok := firstMatch(text, rules); ok {
		return label
	}
	return DefaultEventType
}

// NewsCategory classifies text into a news category via the first matching rule.
func NewsCategory(text string, rules []TypeRule) string {
	if label, ok := firstMatch(text, rules); ok {
		return label
	}
	return DefaultNewsCategory
}

func firstMatch(text string, rules []TypeRule) (string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, p := range rule.Patterns {
			if p.MatchString(lower) {
				return rule.Label, true
			}
		}
	}
	return "", false
}

// Country scans the rule list in order and returns the tag of the first
// keyword found in the text.
func Country(text string, rules []CountryRule) string {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Country
		}
	}
	return DefaultCountry
}
