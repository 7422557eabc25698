package spatial

import (
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func TestSkipListRanksByScoreThenKey(t *testing.T) {
	sl := NewSkipList(1)
	sl.Insert(3, 1)
	sl.Insert(1, 1)
	sl.Insert(2, 5)
	sl.Insert(4, 0)

	tests := []struct {
		key  uint32
		rank int
	}{
		{2, 1},
		{1, 2},
		{3, 3},
		{4, 4},
		{9, 0},
	}
	for _, tt := range tests {
		if got := sl.Rank(tt.key); got != tt.rank {
			t.Errorf("Rank(%d): expected %d, got %d", tt.key, tt.rank, got)
		}
	}

	got := sl.Range(2, 3)
	if len(got) != 2 || got[0].Key != 1 || got[1].Key != 3 {
		t.Errorf("Expected keys [1 3], got %v", got)
	}
	if sl.Range(5, 9) != nil {
		t.Error("Expected empty range past the end")
	}
}

func TestSkipListUpdateMovesEntry(t *testing.T) {
	sl := NewSkipList(1)
	sl.Insert(1, 2)
	sl.Insert(2, 1)
	sl.Insert(2, 3)

	if sl.Len() != 2 {
		t.Fatalf("Expected 2 entries after update, got %d", sl.Len())
	}
	if sl.Rank(2) != 1 || sl.Rank(1) != 2 {
		t.Errorf("Expected updated key to lead, got ranks %d %d", sl.Rank(2), sl.Rank(1))
	}
	if score, ok := sl.Score(2); !ok || score != 3 {
		t.Errorf("Expected score 3, got %v %v", score, ok)
	}

	if !sl.Remove(2) || sl.Remove(2) {
		t.Error("Expected a single successful remove")
	}
	if sl.Rank(1) != 1 || sl.Len() != 1 {
		t.Errorf("Expected remaining key first, got rank %d len %d", sl.Rank(1), sl.Len())
	}
}

// Ranks and ranges always agree with a sorted copy of the scores.
func TestSkipListMatchesSort(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sl := NewSkipList(rapid.Int64().Draw(t, "seed"))
		scores := map[uint32]float64{}

		ops := rapid.IntRange(1, 200).Draw(t, "ops")
		for range ops {
			key := uint32(rapid.IntRange(0, 40).Draw(t, "key"))
			if rapid.IntRange(0, 3).Draw(t, "op") == 0 {
				_, present := scores[key]
				if sl.Remove(key) != present {
					t.Fatalf("Remove(%d) disagreed with presence %v", key, present)
				}
				delete(scores, key)
				continue
			}
			score := float64(rapid.IntRange(0, 10).Draw(t, "score"))
			sl.Insert(key, score)
			scores[key] = score
		}

		want := make([]SkipListEntry, 0, len(scores))
		for k, s := range scores {
			want = append(want, SkipListEntry{Key: k, Score: s})
		}
		sort.Slice(want, func(i, j int) bool {
			return ahead(want[i], want[j].Score, want[j].Key)
		})

		if sl.Len() != len(want) {
			t.Fatalf("Expected %d entries, got %d", len(want), sl.Len())
		}
		got := sl.Range(1, len(want))
		for i, e := range want {
			if got[i] != e {
				t.Fatalf("rank %d: expected %v, got %v", i+1, e, got[i])
			}
			if r := sl.Rank(e.Key); r != i+1 {
				t.Fatalf("Rank(%d): expected %d, got %d", e.Key, i+1, r)
			}
		}
	})
}
