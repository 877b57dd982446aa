package service

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// clampLimit applies the default page size and caps it.
func clampLimit(limit, def int) int {
	if def <= 0 || def > maxListLimit {
		def = defaultListLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
