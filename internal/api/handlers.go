package api

import (
	"encoding/json"
	"net/http"
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.state.Snapshot())
}

type healthResponse struct {
	Status  string `json:"status"`
	MatchID string `json:"matchId"`
	Tick    uint64 `json:"tick"`
	Alive   int    `json:"alive"`
}

// handleHealth reports 503 once the match is over so load balancers stop
// routing new players to a server about to exit.
func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	resp := healthResponse{
		Status:  "ok",
		MatchID: snap.MatchID,
		Tick:    snap.TickNumber,
		Alive:   snap.AliveCount,
	}
	if snap.Over {
		resp.Status = "ending"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(resp)
		return
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
