package obs

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// LoadInfo is a point-in-time load sample for this node, reported alongside
// the etcd service-discovery lease so a front door can route new rooms away
// from saturated nodes.
type LoadInfo struct {
	GameCount   int
	PlayerCount int
	CPUPercent  float64
	MemPercent  float64
}

// Sample reads current CPU/memory utilization via gopsutil. CPU sampling
// blocks for a short interval; callers should run it off the hot path
// (e.g. a periodic reporter goroutine), mirroring the teacher's Monitor.Report
// loop.
func Sample(games, players int) LoadInfo {
	li := LoadInfo{GameCount: games, PlayerCount: players}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		li.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		li.MemPercent = vm.UsedPercent
	}
	return li
}

// Score computes a weighted load figure in [0, 100], heavier CPU/mem
// pressure and active game/player counts pushing it up. Mirrors the
// teacher's CalculateLoad weighting.
func (li LoadInfo) Score(maxGames, maxPlayers int) float64 {
	gameRatio := 0.0
	if maxGames > 0 {
		gameRatio = float64(li.GameCount) / float64(maxGames)
	}
	playerRatio := 0.0
	if maxPlayers > 0 {
		playerRatio = float64(li.PlayerCount) / float64(maxPlayers)
	}
	return li.CPUPercent*0.3 + li.MemPercent*0.2 + gameRatio*100*0.25 + playerRatio*100*0.25
}
