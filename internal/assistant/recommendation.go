package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"example.com/fitscribe/internal/domain"
)

const recommendPrompt = `You are a personal fitness coach. Based on the workout history below, suggest what the user should do for their next workout. Reply with a JSON object containing a single 'recommendations' field holding your advice as plain text.

Here is the workout data: %s`

var recommendSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recommendations": {Type: genai.TypeString, Description: "Workout advice for the user."},
	},
	Required: []string{"recommendations"},
}

// SuggestWorkout generates a natural-language recommendation from free-text
// workout history. The reply carries no structure beyond being non-empty and
// the gateway makes no idempotence guarantee.
func (g *Gateway) SuggestWorkout(ctx context.Context, workoutData string) (string, error) {
	reply, err := g.generate(ctx, "suggest_workout", fmt.Sprintf(recommendPrompt, workoutData), recommendSchema)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRecommendationFailed, err)
	}

	var decoded struct {
		Recommendations string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(reply), &decoded); err != nil {
		return "", fmt.Errorf("%w: malformed reply: %v", domain.ErrRecommendationFailed, err)
	}
	if decoded.Recommendations == "" {
		return "", fmt.Errorf("%w: empty recommendation", domain.ErrRecommendationFailed)
	}
	return decoded.Recommendations, nil
}
