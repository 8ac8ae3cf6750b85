package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"example.com/fitscribe/internal/domain"
)

var generateContentURL = regexp.MustCompile(`:generateContent`)

// newTestGateway builds a Gateway whose HTTP transport replies to every
// generateContent call with the given model text.
func newTestGateway(t *testing.T, modelReply string) *Gateway {
	t.Helper()
	return newTestGatewayResponder(t, httpmock.NewStringResponder(http.StatusOK, wireResponse(t, modelReply)))
}

func newTestGatewayResponder(t *testing.T, responder httpmock.Responder) *Gateway {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterRegexpResponder(http.MethodPost, generateContentURL, responder)

	gateway, err := New(context.Background(), Config{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: transport},
	})
	require.NoError(t, err)
	return gateway
}

// wireResponse wraps model text in the candidates envelope the API returns.
func wireResponse(t *testing.T, text string) string {
	t.Helper()
	envelope := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return string(raw)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestParseDataPoint(t *testing.T) {
	gateway := newTestGateway(t, `{"type":"sleep","value":"8 hours"}`)

	point, err := gateway.ParseDataPoint(context.Background(), "slept 8 hours last night")
	require.NoError(t, err)
	require.Equal(t, domain.ExtractedDataPoint{Category: "sleep", Value: "8 hours"}, point)
}

func TestParseDataPointRejectsMissingFields(t *testing.T) {
	gateway := newTestGateway(t, `{"type":"sleep"}`)

	_, err := gateway.ParseDataPoint(context.Background(), "slept well")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestParseDataPointRejectsMalformedReply(t *testing.T) {
	gateway := newTestGateway(t, `not json at all`)

	_, err := gateway.ParseDataPoint(context.Background(), "slept well")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestParseDataPointUpstreamFailure(t *testing.T) {
	gateway := newTestGatewayResponder(t, httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":{"message":"boom"}}`))

	_, err := gateway.ParseDataPoint(context.Background(), "slept well")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestParseFitness(t *testing.T) {
	gateway := newTestGateway(t, `{"exercise":"pushups","sets":3,"reps":10}`)

	obs, err := gateway.ParseFitness(context.Background(), "3 sets of 10 pushups")
	require.NoError(t, err)
	require.Equal(t, "pushups", obs.Exercise)
	require.Equal(t, 3, obs.Sets)
	require.Equal(t, 10, obs.Reps)
	require.Nil(t, obs.Weight)
	require.Nil(t, obs.Unit)
}

func TestParseFitnessWithWeight(t *testing.T) {
	gateway := newTestGateway(t, `{"exercise":"bench press","sets":5,"reps":5,"weight":80,"unit":"kg"}`)

	obs, err := gateway.ParseFitness(context.Background(), "5x5 bench press at 80kg")
	require.NoError(t, err)
	require.NotNil(t, obs.Weight)
	require.Equal(t, 80.0, *obs.Weight)
	require.NotNil(t, obs.Unit)
	require.Equal(t, "kg", *obs.Unit)
}

func TestParseFitnessRejectsWeightWithoutUnit(t *testing.T) {
	gateway := newTestGateway(t, `{"exercise":"bench press","sets":5,"reps":5,"weight":80}`)

	_, err := gateway.ParseFitness(context.Background(), "5x5 bench press at 80")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestParseFitnessRejectsMissingRequiredFields(t *testing.T) {
	gateway := newTestGateway(t, `{"exercise":"pushups","sets":3}`)

	_, err := gateway.ParseFitness(context.Background(), "some pushups")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestSuggestWorkout(t *testing.T) {
	gateway := newTestGateway(t, `{"recommendations":"Try 4 sets of 12 pushups tomorrow."}`)

	advice, err := gateway.SuggestWorkout(context.Background(), "3 sets of 10 pushups")
	require.NoError(t, err)
	require.Equal(t, "Try 4 sets of 12 pushups tomorrow.", advice)
}

func TestSuggestWorkoutRejectsEmptyAdvice(t *testing.T) {
	gateway := newTestGateway(t, `{"recommendations":""}`)

	_, err := gateway.SuggestWorkout(context.Background(), "3 sets of 10 pushups")
	require.ErrorIs(t, err, domain.ErrRecommendationFailed)
}

func TestSuggestWorkoutUpstreamFailure(t *testing.T) {
	gateway := newTestGatewayResponder(t, httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`))

	_, err := gateway.SuggestWorkout(context.Background(), "3 sets of 10 pushups")
	require.ErrorIs(t, err, domain.ErrRecommendationFailed)
}
