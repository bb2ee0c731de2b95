package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Compiled regex patterns for leading quantity/unit extraction
var (
	// Matches a leading number like "2", "1.5", "1/2", optionally followed by "x" ("2x", "3 x")
	leadingNumberPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?(?:/\d+)?)\s*(?:[x×]\s+|[x×]$)?\s*`)

	// Matches a leading number word followed by whitespace ("a", "two", "half")
	leadingNumberWordPattern = regexp.MustCompile(`(?i)^(a|an|one|two|three|four|five|six|seven|eight|nine|ten|twelve|half)\s+`)

	// Matches a unit directly after the quantity, with an optional trailing "of"
	leadingUnitPattern = regexp.MustCompile(`(?i)^(lbs?|pounds?|kgs?|kilos?|kilograms?|grams?|g|oz|ounces?|pcs?|pieces?|packs?|packets?|bags?|box(?:es)?|trays?|cans?|bottles?|dozens?|doz|bunch(?:es)?|heads?)\b\.?\s*(?:of\s+)?`)
)

// itemCutset is trimmed from both ends of a list fragment (whitespace, bullets, stray punctuation)
const itemCutset = " \t\r\n-*•·.:!?\"'()[]"

var numberWords = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "twelve": 12, "half": 0.5,
}

var unitAliases = map[string]string{
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg",
	"g": "g", "gram": "g", "grams": "g",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"pc": "pc", "pcs": "pc", "piece": "pc", "pieces": "pc",
	"pack": "pack", "packs": "pack", "packet": "pack", "packets": "pack",
	"bag": "bag", "bags": "bag", "box": "box", "boxes": "box",
	"tray": "tray", "trays": "tray", "can": "can", "cans": "can",
	"bottle": "bottle", "bottles": "bottle",
	"dozen": "dozen", "dozens": "dozen", "doz": "dozen",
	"bunch": "bunch", "bunches": "bunch", "head": "head", "heads": "head",
}

// ParsedItem is one shopping-list fragment split into quantity, unit and the text to match
type ParsedItem struct {
	Text     string  // the fragment as written, trimmed
	Query    string  // the fragment with the leading quantity and unit removed
	Quantity float64 // 1 when no quantity was given
	Unit     string  // canonical unit, empty when none was given
}

// ParseQuantity strips a leading quantity and unit, e.g. "2 lbs shrimp" -> 2, "lb", "shrimp"
func ParseQuantity(fragment string) ParsedItem {
	text := strings.Trim(fragment, itemCutset)
	item := ParsedItem{Text: text, Query: text, Quantity: 1}
	if text == "" {
		return item
	}

	rest := text
	if m := leadingNumberPattern.FindStringSubmatch(rest); m != nil {
		if q, ok := parseNumber(m[1]); ok {
			item.Quantity = q
		}
		rest = rest[len(m[0]):]
	} else if m := leadingNumberWordPattern.FindStringSubmatch(rest); m != nil {
		item.Quantity = numberWords[strings.ToLower(m[1])]
		rest = rest[len(m[0]):]
	} else {
		return item
	}

	if m := leadingUnitPattern.FindStringSubmatch(rest); m != nil {
		item.Unit = unitAliases[strings.ToLower(m[1])]
		rest = rest[len(m[0]):]
	}

	item.Query = strings.Trim(rest, itemCutset)
	return item
}

// parseNumber accepts integers, decimals and simple fractions
func parseNumber(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
