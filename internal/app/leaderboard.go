package app

import (
	"sort"
	"time"

	"github.com/sot015/ocp-quiz-app/internal/domain"
)

// snapshotLeaderboard recomputes the frozen scoreboard view from scratch.
// Rows are built by walking the registry in registration order, so the
// stable sort keeps that order among equal scores.
func snapshotLeaderboard(registry *nameRegistry, ledger *scoreLedger, at time.Time) domain.Leaderboard {
	rows := make([]domain.LeaderboardRow, 0, len(registry.order))
	for _, key := range registry.order {
		rows = append(rows, domain.LeaderboardRow{
			Name:  registry.canonical[key],
			Score: ledger.score(key),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})

	lb := domain.Leaderboard{Rows: rows, CapturedAt: at}
	if len(rows) > 0 {
		lb.MaxScore = rows[0].Score
		for _, row := range rows {
			if row.Score == lb.MaxScore {
				lb.Winners = append(lb.Winners, row.Name)
			}
		}
	}
	return lb
}
