package sanitizer

import "strings"

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// NormalizeExpertise splits a comma separated expertise list, normalizes each
// tag and joins the unique tags back with ", ".
func NormalizeExpertise(expertise string) string {
	tags := NormalizeStringSlice(strings.Split(expertise, ","), NormalizeTag)
	return strings.Join(tags, ", ")
}
