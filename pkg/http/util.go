package http

// ParseBool reads query-style booleans ("1", "true", "yes").
func ParseBool(s string) bool {
	switch s {
	case "1", "true", "TRUE", "True", "yes":
		return true
	}
	return false
}
