package tagging

// A Block of a cache is the information that is associated with a cache line.
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool

	prev *Block
	next *Block
}

// A Set is a list of blocks where a certain piece memory can be stored at.
//
// The blocks form a recency list. The block after the sentinel is the least
// recently used one and the block before it is the most recently used one.
// Invalid blocks are never visited, so they always sit at the LRU end.
type Set struct {
	ID     int
	Blocks []Block

	sentinel Block
	lookup   map[uint64]*Block
}

func newSet(setID, numWays int) *Set {
	s := &Set{
		ID:     setID,
		Blocks: make([]Block, numWays),
	}

	s.reset()

	return s
}

func (s *Set) reset() {
	s.sentinel.prev = &s.sentinel
	s.sentinel.next = &s.sentinel
	s.lookup = make(map[uint64]*Block, len(s.Blocks))

	for i := range s.Blocks {
		b := &s.Blocks[i]
		*b = Block{SetID: s.ID, WayID: i}
		s.pushMRU(b)
	}
}

func (s *Set) unlink(b *Block) {
	b.prev.next = b.next
	b.next.prev = b.prev
	b.prev = nil
	b.next = nil
}

func (s *Set) pushMRU(b *Block) {
	b.prev = s.sentinel.prev
	b.next = &s.sentinel
	s.sentinel.prev.next = b
	s.sentinel.prev = b
}

func (s *Set) find(tag uint64) (*Block, bool) {
	b, ok := s.lookup[tag]
	return b, ok
}

func (s *Set) visit(b *Block) {
	if s.sentinel.prev == b {
		return
	}

	s.unlink(b)
	s.pushMRU(b)
}

func (s *Set) fill(b *Block, tag uint64) {
	if b.IsValid {
		delete(s.lookup, b.Tag)
	}

	b.Tag = tag
	b.IsValid = true
	s.lookup[tag] = b
}

// LRU returns the least recently used block.
func (s *Set) LRU() *Block {
	return s.sentinel.next
}

// MRU returns the most recently used block.
func (s *Set) MRU() *Block {
	return s.sentinel.prev
}

// NumValid returns the number of blocks holding a tag.
func (s *Set) NumValid() int {
	return len(s.lookup)
}

// Tags returns the valid tags from the least recently used to the most
// recently used.
func (s *Set) Tags() []uint64 {
	tags := make([]uint64, 0, len(s.lookup))
	for b := s.sentinel.next; b != &s.sentinel; b = b.next {
		if b.IsValid {
			tags = append(tags, b.Tag)
		}
	}

	return tags
}
