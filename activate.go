package extspi

import "strings"

const activateDefaultSentinel = "default"

// activateQuery is the parsed form of GetActivate's comma-separated
// names argument (spec section 4.3): explicit inclusions split around
// the "default" sentinel, explicit removals, and the "-default" flag
// that disables automatic activation entirely.
type activateQuery struct {
	before    []string // explicit names preceding the "default" sentinel
	after     []string // explicit names following the "default" sentinel
	hasAny    bool     // true if names had any content at all
	excluded  map[string]bool
	noDefault bool
}

func parseActivateNames(names string) activateQuery {
	q := activateQuery{excluded: make(map[string]bool)}
	if strings.TrimSpace(names) == "" {
		return q
	}
	q.hasAny = true

	raw := strings.Split(names, ",")
	seenDefault := false
	for _, tok := range raw {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		switch {
		case strings.HasPrefix(tok, "-"):
			name := tok[1:]
			if name == activateDefaultSentinel {
				q.noDefault = true
				continue
			}
			q.excluded[name] = true
		case strings.HasPrefix(tok, "+"):
			name := tok[1:]
			if name == activateDefaultSentinel {
				seenDefault = true
				continue
			}
			if seenDefault {
				q.after = append(q.after, name)
			} else {
				q.before = append(q.before, name)
			}
		default:
			if tok == activateDefaultSentinel {
				seenDefault = true
				continue
			}
			if seenDefault {
				q.after = append(q.after, tok)
			} else {
				q.before = append(q.before, tok)
			}
		}
	}
	return q
}

// matchesActivate reports whether a candidate's activation metadata
// satisfies the group and URL preconditions of spec section 4.3.
func matchesActivate(spec ActivateSpec, group string, u *URL) bool {
	if group != "" {
		if len(spec.Groups) > 0 {
			if _, ok := spec.Groups[group]; !ok {
				return false
			}
		}
	}
	if len(spec.KVPairs) == 0 {
		return true
	}
	for _, kv := range spec.KVPairs {
		key, val := kv[0], kv[1]
		if val == "" {
			if u.HasParameter(key) {
				return true
			}
			continue
		}
		if u.Parameter(key) == val {
			return true
		}
	}
	return false
}
