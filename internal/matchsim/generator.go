package matchsim

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/matchxg/internal/domain/model"
)

// kindWeights approximates how often an operator presses each button.
var kindWeights = []struct { //nolint:gochecknoglobals // fixed distribution
	kind   model.EventKind
	weight int
}{
	{model.Possession, 40},
	{model.ShotOffTarget, 15},
	{model.ShotOnTarget, 10},
	{model.DangerousShot, 5},
	{model.Corner, 15},
	{model.DangerousFoul, 13},
	{model.RedCard, 2},
}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func randomKind() model.EventKind {
	total := 0
	for _, kw := range kindWeights {
		total += kw.weight
	}
	r := randomInt(total)
	for _, kw := range kindWeights {
		if r < kw.weight {
			return kw.kind
		}
		r -= kw.weight
	}
	return model.Possession
}

// Generate returns n unique events followed by replays of earlier ids.
// The replay count is n*dupRate rounded down. Replays keep their original
// team and kind so a server that failed to dedupe would visibly drift.
func Generate(n int, dupRate float64) []Event {
	if n <= 0 {
		return nil
	}
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		team := model.Home
		if randomInt(2) == 1 {
			team = model.Away
		}
		events = append(events, Event{
			EventID: uuid.NewString(),
			Team:    string(team),
			Kind:    string(randomKind()),
		})
	}

	if dupRate > 1 {
		dupRate = 1
	}
	dupes := int(float64(n) * dupRate)
	for i := 0; i < dupes; i++ {
		events = append(events, events[randomInt(n)])
	}
	return events
}

// expectedCounts folds the unique events per team, ignoring xG which
// depends on the server clock.
func expectedCounts(events []Event) map[model.Team]model.TeamStats {
	seen := make(map[string]struct{}, len(events))
	out := make(map[model.Team]model.TeamStats, len(model.Teams))
	for _, e := range events {
		if _, ok := seen[e.EventID]; ok {
			continue
		}
		seen[e.EventID] = struct{}{}
		team := model.Team(e.Team)
		out[team] = out[team].Add(model.Event{Team: team, Kind: model.EventKind(e.Kind)})
	}
	return out
}
