package source

import (
	"sort"
	"strings"

	"sjsage522/dealbite/internal/extract"
	apperrors "sjsage522/dealbite/pkg/errors"
)

// Source is a restaurant deals page and the title rules tied to its layout
type Source struct {
	Restaurant string
	URL        string
	Overrides  []extract.Override

	normalizer *extract.Normalizer
}

// Normalizer returns the title normalizer for this source
func (s Source) Normalizer() *extract.Normalizer {
	if s.normalizer == nil {
		return extract.NewNormalizer(s.Overrides...)
	}
	return s.normalizer
}

// defaults are the built-in sources. Configured URLs replace these.
var defaults = []Source{
	{
		Restaurant: "wendys",
		URL:        "https://www.wendys.com/deals",
		Overrides:  []extract.Override{extract.BiggieBundle},
	},
}

// Registry resolves restaurant slugs to sources
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds a registry from the built-in sources with urls layered
// on top. Keys of urls are restaurant slugs, matched case-insensitively.
// A configured restaurant without a built-in entry gets no overrides.
func NewRegistry(urls map[string]string) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range defaults {
		r.add(s)
	}
	for name, url := range urls {
		key := normalizeName(name)
		s, ok := r.sources[key]
		if !ok {
			s = Source{Restaurant: key}
		}
		s.URL = url
		r.add(s)
	}
	return r
}

func (r *Registry) add(s Source) {
	s.Restaurant = normalizeName(s.Restaurant)
	s.normalizer = extract.NewNormalizer(s.Overrides...)
	r.sources[s.Restaurant] = s
}

// Lookup returns the source for restaurant
func (r *Registry) Lookup(restaurant string) (Source, error) {
	key := normalizeName(restaurant)
	if key == "" {
		return Source{}, apperrors.NewValidation("registry", "restaurant is required")
	}
	s, ok := r.sources[key]
	if !ok {
		return Source{}, apperrors.NewValidation(key, "unknown restaurant")
	}
	return s, nil
}

// Restaurants lists the known slugs in sorted order
func (r *Registry) Restaurants() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
