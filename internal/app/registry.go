package app

import (
	"strings"
	"unicode/utf8"

	"github.com/sot015/ocp-quiz-app/internal/domain"
)

const maxNameLength = 40

// normalizeName trims the ends and collapses internal whitespace runs.
// Unusable input collapses to the empty string.
func normalizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// nameKey derives the case-insensitive uniqueness key for a normalized name.
func nameKey(normalized string) string {
	return strings.ToLower(normalized)
}

// nameRegistry owns the mapping from case-insensitive key to canonical
// display spelling and is the single choke point for the uniqueness
// invariant. It is not safe for concurrent use on its own; the owning
// Session serializes access.
type nameRegistry struct {
	canonical map[string]string // key -> display spelling
	order     []string          // keys in registration order, used for tie-breaks
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{canonical: make(map[string]string)}
}

// register validates and inserts a player name, returning the canonical
// spelling. Registering the exact same name again is a no-op success; a
// different spelling of an existing key is a collision.
func (r *nameRegistry) register(raw string) (string, error) {
	normalized := normalizeName(raw)
	if normalized == "" || utf8.RuneCountInString(normalized) > maxNameLength {
		return "", domain.ErrInvalidName
	}
	key := nameKey(normalized)
	if existing, ok := r.canonical[key]; ok {
		if existing == normalized {
			return existing, nil
		}
		return "", domain.ErrNameTaken
	}
	r.canonical[key] = normalized
	r.order = append(r.order, key)
	return normalized, nil
}

// resolve returns the key and canonical spelling for a name, if registered.
func (r *nameRegistry) resolve(raw string) (key, canonical string, ok bool) {
	key = nameKey(normalizeName(raw))
	canonical, ok = r.canonical[key]
	return key, canonical, ok
}

// rename migrates a registration to a new spelling while keeping the
// original registration position. Per-player state keyed by the old key is
// migrated by the caller.
func (r *nameRegistry) rename(oldKey, raw string) (newKey, canonical string, err error) {
	normalized := normalizeName(raw)
	if normalized == "" || utf8.RuneCountInString(normalized) > maxNameLength {
		return "", "", domain.ErrInvalidName
	}
	newKey = nameKey(normalized)
	if _, taken := r.canonical[newKey]; taken && newKey != oldKey {
		return "", "", domain.ErrNameTaken
	}
	delete(r.canonical, oldKey)
	r.canonical[newKey] = normalized
	if newKey != oldKey {
		for i, key := range r.order {
			if key == oldKey {
				r.order[i] = newKey
				break
			}
		}
	}
	return newKey, normalized, nil
}

func (r *nameRegistry) count() int {
	return len(r.canonical)
}

func (r *nameRegistry) reset() {
	r.canonical = make(map[string]string)
	r.order = nil
}
