package tagging

// A VictimFinder decides which block should be evicted.
type VictimFinder interface {
	FindVictim(tags TagArray, setID int) *Block
}

// LRUVictimFinder evicts the least recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the least recently used block in a set. Empty blocks are
// older than any filled one, so they are picked first.
func (e *LRUVictimFinder) FindVictim(tags TagArray, setID int) *Block {
	return tags.GetSet(setID).LRU()
}
