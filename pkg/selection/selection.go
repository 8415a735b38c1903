package selection

// Fallback is the 1-based position of the choice to select when none of the
// previous values survive. NoFallback disables the default.
type Fallback int

const NoFallback Fallback = 0

// Reconcile computes the next valid selection from the previous one and the
// currently offered choices. Values the user picked that are still offered are
// kept (in choices order); otherwise the fallback choice is used, if any.
// previous may be nil, a single value or a set.
func Reconcile(previous []string, choices []string, fallback Fallback) []string {
	if len(choices) == 0 {
		return []string{}
	}

	kept := Intersect(choices, previous)
	if len(kept) > 0 {
		return kept
	}

	if fallback == NoFallback {
		return []string{}
	}

	if fallback < 1 || int(fallback) > len(choices) {
		return []string{}
	}

	return []string{choices[fallback-1]}
}

// Intersect returns the values of a that are also in b, in a's order.
func Intersect(a []string, b []string) []string {
	set := toSet(b)
	result := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			result = append(result, v)
		}
	}
	return result
}

// Difference returns the values of a that are not in b, in a's order.
func Difference(a []string, b []string) []string {
	set := toSet(b)
	result := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; !ok {
			result = append(result, v)
		}
	}
	return result
}

// Dropped returns the values of previous that next no longer holds.
func Dropped(previous []string, next []string) []string {
	return Difference(previous, next)
}

func Equal(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
