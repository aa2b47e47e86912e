package docindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/corpusdigest/digest/internal/digesterrors"
)

const (
	forwardIndexFile = "forward_index.json"
	reverseIndexFile = "reverse_index.json"
	statsFile        = "stats.json"
)

// WriteIndex persists the forward index, reverse index, and stats to dir,
// one file each. Each file is written to a temp path and renamed into
// place so a reader never observes a partially written file. The
// three-file set as a whole is not atomic across files; a caller needing
// an atomic swap stages into a scratch directory and renames that.
func WriteIndex(dir string, forward *ForwardIndex, reverse *ReverseIndex, stats *Stats) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating index dir %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	if err := writeJSONAtomic(filepath.Join(dir, forwardIndexFile), forward); err != nil {
		return err
	}
	if err := writeJSONAtomic(filepath.Join(dir, reverseIndexFile), reverse); err != nil {
		return err
	}
	if err := writeJSONAtomic(filepath.Join(dir, statsFile), stats); err != nil {
		return err
	}
	return nil
}

func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling %s: %v", digesterrors.ErrInvalidInput, path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", digesterrors.ErrInvalidInput, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: renaming %s: %v", digesterrors.ErrInvalidInput, tmp, err)
	}
	return nil
}

// ReadForwardIndex loads forward_index.json. An index written at any
// other format version is rejected: there is no in-place upgrade path, so
// a stale or future index must be rebuilt, not partially interpreted.
// Missing optional fields within the current version default to their
// zero values.
func ReadForwardIndex(dir string) (*ForwardIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, forwardIndexFile))
	if err != nil {
		return nil, fmt.Errorf("%w: index not found in %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	var fi ForwardIndex
	if err := json.Unmarshal(data, &fi); err != nil {
		return nil, fmt.Errorf("%w: malformed forward index in %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	if fi.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: forward index in %s has version %d, want %d; rebuild the index",
			digesterrors.ErrInvalidInput, dir, fi.Version, CurrentVersion)
	}
	if fi.Files == nil {
		fi.Files = map[string]*DocumentEntry{}
	}
	if fi.IDFMap == nil {
		fi.IDFMap = map[string]float64{}
	}
	return &fi, nil
}

// ReadReverseIndex loads reverse_index.json.
func ReadReverseIndex(dir string) (*ReverseIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, reverseIndexFile))
	if err != nil {
		return nil, fmt.Errorf("%w: index not found in %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	var ri ReverseIndex
	if err := json.Unmarshal(data, &ri); err != nil {
		return nil, fmt.Errorf("%w: malformed reverse index in %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	if ri.Keywords == nil {
		ri.Keywords = map[string][]Posting{}
	}
	return &ri, nil
}

// ReadStats loads stats.json.
func ReadStats(dir string) (*Stats, error) {
	data, err := os.ReadFile(filepath.Join(dir, statsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: stats not found in %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: malformed stats in %s: %v", digesterrors.ErrInvalidInput, dir, err)
	}
	return &s, nil
}

// SortedPaths returns the forward index's document paths in ascending
// order, used wherever output depends on deterministic path-ordered
// iteration.
func (fi *ForwardIndex) SortedPaths() []string {
	paths := make([]string, 0, len(fi.Files))
	for p := range fi.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
