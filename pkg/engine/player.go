package engine

import (
	"math/rand"
)

// RandomPlayer picks uniformly among the actions its side can take.
// Candidates are generated with GenerateActions and, unless Unfiltered is
// set, filtered through ValidateAction with Rules so the player never
// forfeits on an action the engine would refuse.
type RandomPlayer struct {
	Side       Side
	Rules      RuleOptions
	Unfiltered bool
	Rng        *rand.Rand
}

// NewRandomPlayer creates a random player for side seeded with seed.
func NewRandomPlayer(side Side, rules RuleOptions, seed int64) *RandomPlayer {
	return &RandomPlayer{Side: side, Rules: rules, Rng: rand.New(rand.NewSource(seed))}
}

// Policy implements Player. With no candidate actions it returns an action
// with an unknown piece index, which forfeits.
func (p *RandomPlayer) Policy(state Snapshot) (Action, float64) {
	b := BoardFromSnapshot(state)
	actions := GenerateActions(b, p.Side)
	if !p.Unfiltered {
		legal := actions[:0]
		for _, a := range actions {
			if ValidateAction(b, p.Side, a, p.Rules) == nil {
				legal = append(legal, a)
			}
		}
		actions = legal
	}
	if len(actions) == 0 {
		return Action{Index: -1, Cell: -1}, 0
	}
	return actions[p.Rng.Intn(len(actions))], float64(len(actions))
}

// ScriptedPlayer replays a fixed list of actions, then repeats the last one.
type ScriptedPlayer struct {
	Actions []Action
	next    int
}

// Policy implements Player.
func (p *ScriptedPlayer) Policy(state Snapshot) (Action, float64) {
	if len(p.Actions) == 0 {
		return Action{Index: -1, Cell: -1}, 0
	}
	i := p.next
	if i >= len(p.Actions) {
		i = len(p.Actions) - 1
	} else {
		p.next++
	}
	return p.Actions[i], float64(i)
}
