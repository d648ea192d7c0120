// Package tagging keeps the tag state of a set-associative cache.
package tagging

// TagArray holds the tags of all the sets of a cache.
type TagArray interface {
	Lookup(setID int, tag uint64) (*Block, bool)
	Update(block *Block, tag uint64)
	Visit(block *Block)
	GetSet(setID int) *Set
	NumSets() int
	NumWays() int
	Reset()
}

// NewTagArray creates a tag array with all the blocks invalid.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
	}

	t.Reset()

	return t
}

type tagArrayImpl struct {
	numSets int
	numWays int
	sets    []*Set
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

// GetSet returns the set with the given index.
func (t *tagArrayImpl) GetSet(setID int) *Set {
	return t.sets[setID]
}

// Lookup finds the valid block that holds the tag in a set.
func (t *tagArrayImpl) Lookup(setID int, tag uint64) (*Block, bool) {
	return t.sets[setID].find(tag)
}

// Update places a tag in a block, replacing whatever the block held.
func (t *tagArrayImpl) Update(block *Block, tag uint64) {
	t.sets[block.SetID].fill(block, tag)
}

// Visit marks the block as the most recently used in its set.
func (t *tagArrayImpl) Visit(block *Block) {
	t.sets[block.SetID].visit(block)
}

// Reset marks all the blocks invalid.
func (t *tagArrayImpl) Reset() {
	if len(t.sets) != t.numSets {
		t.sets = make([]*Set, t.numSets)
		for i := range t.sets {
			t.sets[i] = newSet(i, t.numWays)
		}

		return
	}

	for _, s := range t.sets {
		s.reset()
	}
}
