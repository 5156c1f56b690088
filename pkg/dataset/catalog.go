package dataset

import (
	"fmt"
	"sort"
)

// Catalog maps archive names to download URLs.
type Catalog map[string]string

// DefaultCatalog returns the upstream archive locations.
func DefaultCatalog() Catalog {
	return Catalog{
		string(Object):    "https://utexas.box.com/shared/static/avkklgeq0e1dgzxz52x488whpu8mgspk.zip",
		string(Goal):      "https://utexas.box.com/shared/static/iv5e4dos8yy2b212pkzkpxu9wbdgjfeg.zip",
		string(Spatial):   "https://utexas.box.com/shared/static/04k94hyizn4huhbv5sz4ev9p2h1p6s7f.zip",
		string(Libero100): "https://utexas.box.com/shared/static/cv73j8zschq8auh9npzt876fdc1akvmk.zip",
	}
}

// With returns a copy of c with the given URLs replaced. Unknown archive
// names are rejected.
func (c Catalog) With(overrides map[string]string) (Catalog, error) {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		if _, ok := c[name]; !ok {
			return nil, fmt.Errorf("unknown archive %q in sources", name)
		}
		out[name] = overrides[name]
	}
	return out, nil
}

// URL returns the download location of an archive.
func (c Catalog) URL(archive string) (string, error) {
	u, ok := c[archive]
	if !ok || u == "" {
		return "", fmt.Errorf("no source for archive %q", archive)
	}
	return u, nil
}
