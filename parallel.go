package tlunit

import (
	"sync"
)

// ParallelCacheLookup looks up every distinct segment hash concurrently. It
// returns the hits keyed by hash, the misses in first-occurrence order
// (deduplicated), and the number of segments served from memory.
//
// Remote stores (Redis, PostgreSQL) answer one key per round trip, so a file
// with hundreds of segments benefits from overlapping the lookups.
func ParallelCacheLookup(cache TranslationCache, segments []Segment, targetLang string) (map[string]string, []Segment, int) {
	hits := make(map[string]string)
	if cache == nil || len(segments) == 0 {
		return hits, dedupeByHash(segments), 0
	}

	unique := dedupeByHash(segments)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, seg := range unique {
		wg.Add(1)
		go func(hash string) {
			defer wg.Done()
			if val, ok := cache.Get(CacheKey(hash, targetLang)); ok {
				mu.Lock()
				hits[hash] = val
				mu.Unlock()
			}
		}(seg.Hash)
	}
	wg.Wait()

	var misses []Segment
	for _, seg := range unique {
		if _, ok := hits[seg.Hash]; !ok {
			misses = append(misses, seg)
		}
	}

	served := 0
	for _, seg := range segments {
		if _, ok := hits[seg.Hash]; ok {
			served++
		}
	}

	return hits, misses, served
}

// dedupeByHash keeps the first segment for each hash, preserving order.
func dedupeByHash(segments []Segment) []Segment {
	seen := make(map[string]bool, len(segments))
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seen[seg.Hash] {
			continue
		}
		seen[seg.Hash] = true
		out = append(out, seg)
	}
	return out
}
