package mediathek

import (
	"fmt"
	"net/http"
	"sort"

	"ardfetch/internal/httputil"
)

// probeSizes issues a HEAD request per candidate URL and maps the
// reported content length to the URL. Candidates sharing a size
// collapse into one entry, the later URL wins. The first probe that
// cannot be sent fails the whole scan.
func probeSizes(client *http.Client, urls []string) (map[int64]string, error) {
	sizes := make(map[int64]string, len(urls))
	for _, u := range urls {
		resp, err := httputil.Head(client, u)
		if err != nil {
			return nil, fmt.Errorf("probing %s: %w", u, err)
		}
		resp.Body.Close()
		sizes[resp.ContentLength] = u
	}
	return sizes, nil
}

// tiersBySize buckets probed streams into quality tiers 1 (smallest),
// 2 (middle) and 3 (largest). Streams without a positive size are
// dropped; when more than three sizes remain only the three largest
// are kept. Returns nil when nothing usable is left.
func tiersBySize(sizes map[int64]string) map[int]string {
	keys := make([]int64, 0, len(sizes))
	for size := range sizes {
		if size > 0 {
			keys = append(keys, size)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if len(keys) > 3 {
		keys = keys[len(keys)-3:]
	}

	return map[int]string{
		1: sizes[keys[0]],
		2: sizes[keys[len(keys)/2]],
		3: sizes[keys[len(keys)-1]],
	}
}
