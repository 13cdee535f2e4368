package karma

import "fmt"

// Outbound message wording. Score updates use Slack markup: emphasis around
// the entity, fixed-width around the score.

func newScoreMessage(entity string, score int64) string {
	return fmt.Sprintf("_New karma for_ *%s* `%d`", entity, score)
}

func selfModificationMessage(delta int64, userID string) string {
	if delta > 0 {
		return "Let go of your ego, " + userID
	}
	return "Hang on to your ego, " + userID
}

func reloadedMessage(count int) string {
	return fmt.Sprintf("Reloaded %d users", count)
}
