package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"example.com/fitscribe/internal/domain"
)

const dataPointPrompt = `You are a data parsing assistant. Your job is to take user provided text and parse it into a structured JSON format with 'type' and 'value' fields.

Here is the text: %s

Return the data in JSON format.`

const fitnessPrompt = `You are a fitness data parsing assistant. Your job is to take user provided workout data in natural language and parse it into a structured JSON format.

Here is the workout data: %s

Return the data in JSON format. If weight is not provided, omit the weight and unit fields.`

var dataPointSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type":  {Type: genai.TypeString, Description: "The type of data point (e.g., sleep, exercise)."},
		"value": {Type: genai.TypeString, Description: "The value of the data point (e.g., 8 hours, 30 minutes)."},
	},
	Required: []string{"type", "value"},
}

var fitnessSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"exercise": {Type: genai.TypeString, Description: "The exercise performed."},
		"sets":     {Type: genai.TypeInteger, Description: "The number of sets performed."},
		"reps":     {Type: genai.TypeInteger, Description: "The number of repetitions performed."},
		"weight":   {Type: genai.TypeNumber, Description: "The weight used (if applicable)."},
		"unit":     {Type: genai.TypeString, Description: "The unit of weight used (if applicable)."},
	},
	Required: []string{"exercise", "sets", "reps"},
}

// ParseDataPoint interprets free text as a generic (type, value) data point.
// The gateway owns schema validation: replies that do not carry both declared
// fields are rejected.
func (g *Gateway) ParseDataPoint(ctx context.Context, text string) (domain.ExtractedDataPoint, error) {
	reply, err := g.generate(ctx, "parse_data_point", fmt.Sprintf(dataPointPrompt, text), dataPointSchema)
	if err != nil {
		return domain.ExtractedDataPoint{}, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	var decoded struct {
		Type  *string `json:"type"`
		Value *string `json:"value"`
	}
	if err := json.Unmarshal([]byte(reply), &decoded); err != nil {
		return domain.ExtractedDataPoint{}, fmt.Errorf("%w: malformed reply: %v", domain.ErrExtractionFailed, err)
	}
	if decoded.Type == nil || decoded.Value == nil {
		return domain.ExtractedDataPoint{}, fmt.Errorf("%w: reply missing type or value field", domain.ErrExtractionFailed)
	}

	point := domain.ExtractedDataPoint{Category: *decoded.Type, Value: *decoded.Value}
	if err := point.Validate(); err != nil {
		return domain.ExtractedDataPoint{}, err
	}
	return point, nil
}

// ParseFitness decomposes a single workout statement into exercise, sets,
// reps and optional weight/unit. The weight-unit co-presence rule is enforced
// as a post-validation step before returning.
func (g *Gateway) ParseFitness(ctx context.Context, workoutText string) (domain.FitnessObservation, error) {
	reply, err := g.generate(ctx, "parse_fitness", fmt.Sprintf(fitnessPrompt, workoutText), fitnessSchema)
	if err != nil {
		return domain.FitnessObservation{}, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	var decoded struct {
		Exercise *string  `json:"exercise"`
		Sets     *int     `json:"sets"`
		Reps     *int     `json:"reps"`
		Weight   *float64 `json:"weight"`
		Unit     *string  `json:"unit"`
	}
	if err := json.Unmarshal([]byte(reply), &decoded); err != nil {
		return domain.FitnessObservation{}, fmt.Errorf("%w: malformed reply: %v", domain.ErrExtractionFailed, err)
	}
	if decoded.Exercise == nil || decoded.Sets == nil || decoded.Reps == nil {
		return domain.FitnessObservation{}, fmt.Errorf("%w: reply missing exercise, sets or reps", domain.ErrExtractionFailed)
	}

	observation := domain.FitnessObservation{
		Exercise: *decoded.Exercise,
		Sets:     *decoded.Sets,
		Reps:     *decoded.Reps,
		Weight:   decoded.Weight,
		Unit:     decoded.Unit,
	}
	if err := observation.Validate(); err != nil {
		return domain.FitnessObservation{}, err
	}
	return observation, nil
}
