package handler

import "strings"

type field struct {
	name  string
	value string
}

// missingFields lists the names of blank fields, in order.
func missingFields(fields ...field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
