// internal/dealintel/industries.go
package dealintel

import "strings"

// majorIndustries maps an athlete's declared major (lowercased) to the
// brand industry tags it is considered adjacent to. Brands in an adjacent
// industry get the industry-fit bonus in both the offer scorer and the
// brand matcher.
var majorIndustries = map[string][]string{
	"business":                {"finance", "consulting", "retail"},
	"business administration": {"finance", "consulting", "retail"},
	"marketing":               {"marketing", "media", "retail"},
	"communications":          {"media", "marketing", "entertainment"},
	"journalism":              {"media", "entertainment"},
	"kinesiology":             {"fitness", "health", "sports equipment"},
	"exercise science":        {"fitness", "health", "sports equipment"},
	"nutrition":               {"nutrition", "health", "food & beverage"},
	"computer science":        {"tech", "gaming", "software"},
	"engineering":             {"tech", "automotive", "software"},
	"fashion merchandising":   {"fashion", "apparel", "retail"},
	"graphic design":          {"media", "fashion", "tech"},
	"education":               {"education", "nonprofit"},
	"psychology":              {"health", "education"},
	"finance":                 {"finance", "fintech"},
	"economics":               {"finance", "consulting", "fintech"},
}

// IndustriesForMajor returns the industry tags derived from a major.
// Unknown majors derive no tags.
func IndustriesForMajor(major string) []string {
	return majorIndustries[strings.ToLower(strings.TrimSpace(major))]
}

// industryMatches reports whether a brand industry tag is in the athlete's
// derived list, case-insensitively.
func industryMatches(brandIndustry, major string) bool {
	if brandIndustry == "" {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(brandIndustry))
	for _, tag := range IndustriesForMajor(major) {
		if strings.ToLower(tag) == want {
			return true
		}
	}
	return false
}
