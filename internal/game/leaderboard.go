package game

import "gas-arena/internal/spatial"

// LeaderboardEntry is one ranked row of the kill leaderboard.
type LeaderboardEntry struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Kills int    `json:"kills"`
	Rank  int    `json:"rank"`
}

// Leaderboard ranks every player that joined the match by kills, ties
// broken by join order. Players stay ranked after they die or leave.
type Leaderboard struct {
	ranks *spatial.SkipList
	names map[uint32]string
}

func NewLeaderboard(seed int64) *Leaderboard {
	return &Leaderboard{
		ranks: spatial.NewSkipList(seed),
		names: make(map[uint32]string),
	}
}

// Record inserts p or moves it to its current kill count.
func (lb *Leaderboard) Record(p *Player) {
	lb.names[p.id] = p.name
	lb.ranks.Insert(p.id, float64(p.kills))
}

// Rank returns the 1-indexed rank of the player with id, or 0.
func (lb *Leaderboard) Rank(id uint32) int {
	return lb.ranks.Rank(id)
}

// Top returns at most n leading entries.
func (lb *Leaderboard) Top(n int) []LeaderboardEntry {
	entries := lb.ranks.Range(1, n)
	result := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = LeaderboardEntry{
			ID:    e.Key,
			Name:  lb.names[e.Key],
			Kills: int(e.Score),
			Rank:  i + 1,
		}
	}
	return result
}

func (lb *Leaderboard) Len() int { return lb.ranks.Len() }
