package spatial

import "math/rand"

const (
	maxLevel         = 32
	levelProbability = 0.25
)

// SkipListEntry is a scored key. Higher scores rank first; equal scores
// rank by ascending key.
type SkipListEntry struct {
	Key   uint32
	Score float64
}

type skipNode struct {
	entry SkipListEntry
	next  []*skipNode
	span  []int // rank distance to next at each level
}

// SkipList is a span-augmented skip list giving O(log n) rank queries
// (Pugh 1990, the layout Redis uses for sorted sets). Not safe for
// concurrent use; the owner serializes access.
type SkipList struct {
	head   *skipNode
	level  int
	length int
	scores map[uint32]float64
	rng    *rand.Rand
}

// NewSkipList creates an empty list. The seed fixes node heights so runs
// are reproducible.
func NewSkipList(seed int64) *SkipList {
	return &SkipList{
		head: &skipNode{
			next: make([]*skipNode, maxLevel),
			span: make([]int, maxLevel),
		},
		level:  1,
		scores: make(map[uint32]float64),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (sl *SkipList) randomLevel() int {
	level := 1
	for level < maxLevel && sl.rng.Float64() < levelProbability {
		level++
	}
	return level
}

// ahead reports whether e ranks before (score, key).
func ahead(e SkipListEntry, score float64, key uint32) bool {
	return e.Score > score || (e.Score == score && e.Key < key)
}

// Insert adds key or moves it to its new score.
func (sl *SkipList) Insert(key uint32, score float64) {
	if old, ok := sl.scores[key]; ok {
		if old == score {
			return
		}
		sl.Remove(key)
	}

	var update [maxLevel]*skipNode
	var rank [maxLevel]int
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		if i < sl.level-1 {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && ahead(x.next[i].entry, score, key) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	level := sl.randomLevel()
	if level > sl.level {
		for i := sl.level; i < level; i++ {
			update[i] = sl.head
			sl.head.span[i] = sl.length
		}
		sl.level = level
	}

	node := &skipNode{
		entry: SkipListEntry{Key: key, Score: score},
		next:  make([]*skipNode, level),
		span:  make([]int, level),
	}
	for i := 0; i < level; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = rank[0] - rank[i] + 1
	}
	for i := level; i < sl.level; i++ {
		update[i].span[i]++
	}

	sl.length++
	sl.scores[key] = score
}

// Remove deletes key. It reports whether key was present.
func (sl *SkipList) Remove(key uint32) bool {
	score, ok := sl.scores[key]
	if !ok {
		return false
	}

	var update [maxLevel]*skipNode
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && ahead(x.next[i].entry, score, key) {
			x = x.next[i]
		}
		update[i] = x
	}

	node := x.next[0]
	for i := 0; i < sl.level; i++ {
		if update[i].next[i] == node {
			update[i].span[i] += node.span[i] - 1
			update[i].next[i] = node.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}

	sl.length--
	delete(sl.scores, key)
	return true
}

// Rank returns the 1-indexed rank of key, or 0 if absent.
func (sl *SkipList) Rank(key uint32) int {
	score, ok := sl.scores[key]
	if !ok {
		return 0
	}

	rank := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && (ahead(x.next[i].entry, score, key) || x.next[i].entry.Key == key) {
			rank += x.span[i]
			x = x.next[i]
		}
		if x != sl.head && x.entry.Key == key {
			return rank
		}
	}
	return 0
}

// Range returns the entries ranked start..end, 1-indexed and inclusive.
func (sl *SkipList) Range(start, end int) []SkipListEntry {
	if start <= 0 {
		start = 1
	}
	if end > sl.length {
		end = sl.length
	}
	if start > end {
		return nil
	}

	traversed := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] < start {
			traversed += x.span[i]
			x = x.next[i]
		}
	}

	result := make([]SkipListEntry, 0, end-start+1)
	for x = x.next[0]; x != nil && traversed < end; x = x.next[0] {
		traversed++
		result = append(result, x.entry)
	}
	return result
}

// Score returns the score stored for key.
func (sl *SkipList) Score(key uint32) (float64, bool) {
	score, ok := sl.scores[key]
	return score, ok
}

// Len returns the number of entries.
func (sl *SkipList) Len() int { return sl.length }
