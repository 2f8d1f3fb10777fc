package room

import (
	"math/rand"
	"time"
)

// questTeamSizes is the required quest team size per round. Rounds past the
// table clamp to 3.
var questTeamSizes = [...]int{2, 3, 2, 3, 3}

func requiredTeamSize(round int) int {
	if round >= len(questTeamSizes) {
		return 3
	}
	return questTeamSizes[round]
}

// assignRoles builds the game roster from the frozen lobby roster, keeping
// its order. ceil(n/3) players are bad, the rest good; the labels are
// shuffled uniformly and zipped 1:1 against the roster.
func assignRoles(roster []RosterEntry) []*Player {
	n := len(roster)
	numBad := (n + 2) / 3

	labels := make([]Team, n)
	for i := range labels {
		if i < numBad {
			labels[i] = TeamBad
		} else {
			labels[i] = TeamGood
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(n, func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})

	players := make([]*Player, n)
	for i, entry := range roster {
		players[i] = &Player{
			ID:   entry.ID,
			Name: entry.Name,
			Role: labels[i],
		}
	}
	return players
}

// teamApproved is the strict-majority rule over the ballots actually cast.
func teamApproved(votes map[string]TeamVote) bool {
	approvals := 0
	for _, v := range votes {
		if v == VoteApprove {
			approvals++
		}
	}
	return approvals > len(votes)/2
}

// questOutcome fails the quest on any sabotage. Quest members who never
// voted count as assisting.
func questOutcome(votes map[string]QuestVote) Outcome {
	for _, v := range votes {
		if v == VoteSabotage {
			return OutcomeFail
		}
	}
	return OutcomeSuccess
}

func countOutcomes(outcomes []Outcome, want Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o == want {
			n++
		}
	}
	return n
}
