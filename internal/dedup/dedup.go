// Package dedup rejects near-duplicate documents by SimHash distance.
package dedup

import (
	"log/slog"

	"github.com/wrensearch/wren/internal/document"
)

// hammingThreshold is exclusive: a candidate is a duplicate iff its
// distance to some survivor is strictly less than this. The boundary is
// load-bearing; fingerprints at exactly this distance are kept.
const hammingThreshold = 3

// Filter returns the documents that survive near-duplicate detection,
// in input order. Each incoming document is compared against every
// earlier survivor; the first document always survives. O(N*K) with K
// survivors, acceptable under the ingest cap.
func Filter(docs []*document.Document) []*document.Document {
	kept := make([]*document.Document, 0, len(docs))
	fingerprints := make([]uint64, 0, len(docs))

	for _, d := range docs {
		fp := d.SimHash()
		duplicate := false
		for _, seen := range fingerprints {
			if document.Hamming(fp, seen) < hammingThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, d)
		fingerprints = append(fingerprints, fp)
	}

	slog.Default().Info("deduplication complete",
		slog.Int("input", len(docs)),
		slog.Int("kept", len(kept)))
	return kept
}
