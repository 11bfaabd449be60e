package province

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonical province and territory codes, east to west then north.
var Canonical = []string{
	"NL", "PE", "NS", "NB", "QC", "ON", "MB", "SK", "AB", "BC", "YT", "NT", "NU",
}

// Atlantic lists the codes that receive the Atlantic label heuristic.
var Atlantic = []string{"NL", "PE", "NS", "NB"}

// names maps bilingual official names (census PRNAME) to codes.
var names = map[string]string{
	"Newfoundland and Labrador / Terre-Neuve-et-Labrador": "NL",
	"Prince Edward Island / Île-du-Prince-Édouard":        "PE",
	"Nova Scotia / Nouvelle-Écosse":                       "NS",
	"New Brunswick / Nouveau-Brunswick":                   "NB",
	"Quebec / Québec":                                     "QC",
	"Ontario":                                             "ON",
	"Manitoba":                                            "MB",
	"Saskatchewan":                                        "SK",
	"Alberta":                                             "AB",
	"British Columbia / Colombie-Britannique":             "BC",
	"Yukon":                                               "YT",
	"Northwest Territories / Territoires du Nord-Ouest":   "NT",
	"Nunavut":                                             "NU",
}

// abbreviations maps census English abbreviations (PREABBR) to codes.
var abbreviations = map[string]string{
	"N.L.":   "NL",
	"P.E.I.": "PE",
	"N.S.":   "NS",
	"N.B.":   "NB",
	"Que.":   "QC",
	"Ont.":   "ON",
	"Man.":   "MB",
	"Sask.":  "SK",
	"Alta.":  "AB",
	"B.C.":   "BC",
	"Y.T.":   "YT",
	"N.W.T.": "NT",
	"Nvt.":   "NU",
}

// misspellings are codes seen in older figure definitions. They are
// reported, never translated.
var misspellings = map[string]string{
	"PEI": "PE",
	"NF":  "NL",
	"PQ":  "QC",
	"NWT": "NT",
	"YK":  "YT",
}

var canonicalSet = func() map[string]bool {
	m := make(map[string]bool, len(Canonical))
	for _, c := range Canonical {
		m[c] = true
	}
	return m
}()

var atlanticSet = func() map[string]bool {
	m := make(map[string]bool, len(Atlantic))
	for _, c := range Atlantic {
		m[c] = true
	}
	return m
}()

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// AcronymForName returns the code for a bilingual official name.
func AcronymForName(name string) (string, bool) {
	a, ok := names[normalize(name)]
	return a, ok
}

// AcronymForAbbreviation returns the code for a census abbreviation.
// Values that already are canonical codes map to themselves.
func AcronymForAbbreviation(abbr string) (string, bool) {
	s := normalize(abbr)
	if a, ok := abbreviations[s]; ok {
		return a, true
	}
	if canonicalSet[s] {
		return s, true
	}
	return "", false
}

// IsCanonical reports whether code is one of the canonical codes.
func IsCanonical(code string) bool {
	return canonicalSet[code]
}

// IsAtlantic reports whether code receives the Atlantic heuristic.
func IsAtlantic(code string) bool {
	return atlanticSet[code]
}

// Suggest returns the canonical code a known misspelling refers to.
func Suggest(code string) (string, bool) {
	c, ok := misspellings[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// deriveAcronym resolves a record's code from its name first, then from
// its abbreviation column.
func deriveAcronym(name, abbr string) string {
	if a, ok := AcronymForName(name); ok {
		return a
	}
	if a, ok := AcronymForAbbreviation(abbr); ok {
		return a
	}
	return ""
}
