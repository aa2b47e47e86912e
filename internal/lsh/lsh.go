// Package lsh implements the LSH & Similarity Engine: MinHash
// banding for candidate-pair generation, combined similarity scoring, and
// single-pass greedy section-duplication clustering.
package lsh

import (
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/fingerprint"
)

const (
	bands = 16
	rows  = 8
)

// Pair is a candidate duplicate pair with its combined similarity.
type Pair struct {
	Path1      string
	Path2      string
	Jaccard    float64
	SimHashSim float64
	MinHashSim float64
	Combined   float64
}

// CandidatePairs partitions each document's MinHash into 16 bands of 8 rows,
// buckets documents sharing a (band index, band key) pair, and returns the
// deduplicated, combined-similarity-scored set of unordered candidate
// pairs. path1 < path2 in every returned Pair.
func CandidatePairs(files map[string]*docindex.DocumentEntry) []Pair {
	type bucketKey struct {
		band int
		key  uint64
	}
	buckets := make(map[bucketKey][]string)

	paths := sortedPaths(files)
	for _, path := range paths {
		doc := files[path]
		for band := 0; band < bands; band++ {
			key := bandKey(doc.MinHash, band)
			bk := bucketKey{band: band, key: key}
			buckets[bk] = append(buckets[bk], path)
		}
	}

	seen := make(map[[2]string]bool)
	var pairs []Pair
	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				p1, p2 := members[i], members[j]
				if p2 < p1 {
					p1, p2 = p2, p1
				}
				key := [2]string{p1, p2}
				if seen[key] {
					continue
				}
				seen[key] = true
				pairs = append(pairs, scorePair(p1, p2, files[p1], files[p2]))
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Combined != pairs[j].Combined {
			return pairs[i].Combined > pairs[j].Combined
		}
		if pairs[i].Path1 != pairs[j].Path1 {
			return pairs[i].Path1 < pairs[j].Path1
		}
		return pairs[i].Path2 < pairs[j].Path2
	})
	return pairs
}

// scorePair computes the general-duplicate combined similarity:
// combined = 0.4*jaccard + 0.3*simhash_sim + 0.3*minhash_sim.
func scorePair(p1, p2 string, d1, d2 *docindex.DocumentEntry) Pair {
	jaccard := fingerprint.JaccardSimilarity(d1.KeywordSet(), d2.KeywordSet())
	simSim := fingerprint.SimHashSimilarity(d1.SimHash, d2.SimHash)
	minSim := d1.MinHash.Similarity(d2.MinHash)
	return Pair{
		Path1:      p1,
		Path2:      p2,
		Jaccard:    jaccard,
		SimHashSim: simSim,
		MinHashSim: minSim,
		Combined:   0.4*jaccard + 0.3*simSim + 0.3*minSim,
	}
}

// SimilarToReference scores every document against a fixed reference
// document using the "similar" report's weighting: combined =
// 0.6*jaccard + 0.4*simhash_sim, no MinHash channel. referencePath is
// excluded from the results. Results are sorted by combined descending,
// ties broken by path ascending.
func SimilarToReference(files map[string]*docindex.DocumentEntry, referencePath string) []Pair {
	ref, ok := files[referencePath]
	if !ok {
		return nil
	}
	refKeywords := ref.KeywordSet()

	var out []Pair
	for _, path := range sortedPaths(files) {
		if path == referencePath {
			continue
		}
		doc := files[path]
		jaccard := fingerprint.JaccardSimilarity(refKeywords, doc.KeywordSet())
		simSim := fingerprint.SimHashSimilarity(ref.SimHash, doc.SimHash)
		out = append(out, Pair{
			Path1:      referencePath,
			Path2:      path,
			Jaccard:    jaccard,
			SimHashSim: simSim,
			Combined:   0.6*jaccard + 0.4*simSim,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Combined != out[j].Combined {
			return out[i].Combined > out[j].Combined
		}
		return out[i].Path2 < out[j].Path2
	})
	return out
}

// SectionKey identifies one section within the corpus.
type SectionKey struct {
	Path  string
	Index int
}

// SectionCluster is one group of near-duplicate sections, keyed by its
// first-seen representative.
type SectionCluster struct {
	Representative SectionKey
	Members        []SectionKey
}

// ClusterSections performs single-pass greedy clustering over sections in
// corpus order, keyed only on SimHash similarity against each cluster's
// representative. sortedPathsIn must be the deterministic path
// ordering the caller uses everywhere else (docindex.ForwardIndex.SortedPaths).
func ClusterSections(files map[string]*docindex.DocumentEntry, sortedPathsIn []string, threshold float64) []SectionCluster {
	var clusters []SectionCluster
	for _, path := range sortedPathsIn {
		doc := files[path]
		for idx, sec := range doc.SectionFingerprints {
			key := SectionKey{Path: path, Index: idx}
			placed := false
			for ci := range clusters {
				repDoc := files[clusters[ci].Representative.Path]
				repSec := repDoc.SectionFingerprints[clusters[ci].Representative.Index]
				if fingerprint.SimHashSimilarity(sec.SimHash, repSec.SimHash) >= threshold {
					clusters[ci].Members = append(clusters[ci].Members, key)
					placed = true
					break
				}
			}
			if !placed {
				clusters = append(clusters, SectionCluster{
					Representative: key,
					Members:        []SectionKey{key},
				})
			}
		}
	}
	return clusters
}

// FilterClusters drops clusters spanning fewer than minFiles distinct
// documents. The section-duplication report consumes this view: a "cluster"
// confined to one file is repetition, not cross-file duplication.
func FilterClusters(clusters []SectionCluster, minFiles int) []SectionCluster {
	var out []SectionCluster
	for _, c := range clusters {
		paths := make(map[string]bool, len(c.Members))
		for _, m := range c.Members {
			paths[m.Path] = true
		}
		if len(paths) >= minFiles {
			out = append(out, c)
		}
	}
	return out
}

// bandKey hashes the 8 consecutive MinHash slots of one band into a single
// 64-bit key. Band-local mixing of the band index keeps buckets from
// different bands implicitly disjoint even when the underlying slot values
// collide.
func bandKey(sig fingerprint.MinHash, band int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.Itoa(band)))
	_, _ = h.Write([]byte{0})
	start := band * rows
	for i := start; i < start+rows; i++ {
		var buf [8]byte
		v := sig[i]
		for b := 0; b < 8; b++ {
			buf[b] = byte(v >> (8 * b))
		}
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func sortedPaths(files map[string]*docindex.DocumentEntry) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
