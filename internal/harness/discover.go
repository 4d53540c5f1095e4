package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrNoLeaves is matched by the error Discover returns when the requested
// scope contains no iteration directories.
var ErrNoLeaves = errors.New("no artifact leaves found")

// NoLeavesError reports an empty discovery result.
type NoLeavesError struct {
	Root   string
	Filter string
}

func (e *NoLeavesError) Error() string {
	if e.Filter != "" {
		return fmt.Sprintf("no artifact leaves found for challenge %q under %s", e.Filter, e.Root)
	}
	return fmt.Sprintf("no artifact leaves found for any challenge under %s", e.Root)
}

// Is makes errors.Is(err, ErrNoLeaves) succeed.
func (e *NoLeavesError) Is(target error) bool {
	return target == ErrNoLeaves
}

// Discover enumerates the leaves under root, laid out as
// <root>/<challenge>/<variant>/<iteration>. When filter is non-empty only
// the challenge with that name is descended.
//
// Entries that are not directories are skipped at every level. The result
// is sorted by (challenge, variant, iteration) with digit runs compared
// numerically, so the sequence does not depend on how the filesystem
// enumerates entries. Names equal after normalization are ordered by their
// on-disk path.
func Discover(root, filter string) ([]Leaf, error) {
	filter = norm.NFC.String(filter)

	challenges, err := subdirs(root)
	if err != nil {
		return nil, err
	}

	var leaves []Leaf
	for _, challenge := range challenges {
		if filter != "" && challenge.name != filter {
			continue
		}
		variants, err := subdirs(challenge.path)
		if err != nil {
			return nil, err
		}
		for _, variant := range variants {
			iterations, err := subdirs(variant.path)
			if err != nil {
				return nil, err
			}
			for _, iter := range iterations {
				leaves = append(leaves, Leaf{
					Challenge: challenge.name,
					Variant:   variant.name,
					Iteration: iter.name,
					Dir:       iter.raw,
					Path:      iter.path,
				})
			}
		}
	}

	if len(leaves) == 0 {
		return nil, &NoLeavesError{Root: root, Filter: filter}
	}

	order := newNameOrder()
	slices.SortStableFunc(leaves, order.compareLeaves)
	return leaves, nil
}

type dirEntry struct {
	name string // NFC-normalized
	raw  string // as stored on disk
	path string
}

// subdirs lists the directories directly inside dir, following symlinks.
// A missing dir yields no entries.
func subdirs(dir string) ([]dirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var out []dirEntry
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		out = append(out, dirEntry{name: norm.NFC.String(e.Name()), raw: e.Name(), path: path})
	}
	return out, nil
}

// nameOrder compares directory names with digit runs taken as numbers, so
// "iteration_2" sorts before "iteration_10". A Collator is not safe for
// concurrent use; build one per sort.
type nameOrder struct {
	coll *collate.Collator
}

func newNameOrder() *nameOrder {
	return &nameOrder{coll: collate.New(language.Und, collate.Numeric)}
}

// compare falls back to byte order when the collator sees no difference,
// so "iteration_02" and "iteration_2" still have a fixed order.
func (o *nameOrder) compare(a, b string) int {
	if c := o.coll.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func (o *nameOrder) compareLeaves(a, b Leaf) int {
	if c := o.compare(a.Challenge, b.Challenge); c != 0 {
		return c
	}
	if c := o.compare(a.Variant, b.Variant); c != 0 {
		return c
	}
	if c := o.compare(a.Iteration, b.Iteration); c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}
