package app

import (
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"msbuild-packages/internal/adapters"
	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

// resultCache remembers extraction results for project content that has
// already been seen with the same properties and central versions. It lives
// as long as its Service, so repeated scans by a long-running caller skip
// unchanged projects, and identical projects within one scan share an entry
// when they do not depend on their own location.
type resultCache struct {
	mu      sync.Mutex
	entries map[uint64][]types.PackageReference
}

func newResultCache() *resultCache {
	return &resultCache{entries: map[uint64][]types.PackageReference{}}
}

func (c *resultCache) get(key uint64) ([]types.PackageReference, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	refs, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append([]types.PackageReference{}, refs...), true
}

func (c *resultCache) put(key uint64, refs []types.PackageReference) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = append([]types.PackageReference{}, refs...)
	c.mu.Unlock()
}

func resultCacheKey(digest string, props types.PropertySet, central types.CentralVersions) uint64 {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(digest)
	writeSortedMap(hasher, "props", props)
	writeSortedMap(hasher, "central", central)
	return hasher.Sum64()
}

// cacheKeyProperties drops the reserved per-project properties that neither
// the project content nor any property or central version mentions. Those
// cannot affect extraction, since placeholders are only found by name.
func cacheKeyProperties(content []byte, props types.PropertySet, central types.CentralVersions) types.PropertySet {
	var haystack strings.Builder
	haystack.Write(content)
	for _, value := range props {
		haystack.WriteString("\x00" + value)
	}
	for _, value := range central {
		haystack.WriteString("\x00" + value)
	}
	mentioned := strings.ToLower(haystack.String())

	keyProps := props
	copied := false
	for _, name := range adapters.ReservedPropertyNames {
		if strings.Contains(mentioned, strings.ToLower(name)) {
			continue
		}
		for key := range props {
			if !strings.EqualFold(key, name) {
				continue
			}
			if !copied {
				keyProps = shared.MergeProperties(props, nil)
				copied = true
			}
			delete(keyProps, key)
		}
	}
	return keyProps
}

func writeSortedMap[M ~map[string]string](hasher *xxhash.Digest, section string, values M) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	_, _ = hasher.WriteString("\x00" + section)
	for _, key := range keys {
		_, _ = hasher.WriteString("\x00" + key + "=" + values[key])
	}
}
