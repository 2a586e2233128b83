package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

func classicCar() *models.Car {
	trim := "Carrera RS"
	color := "Grand Prix White"
	mileage := 42000
	return &models.Car{
		ID:          "car-1",
		Make:        "Porsche",
		Model:       "911",
		Year:        1973,
		Trim:        &trim,
		Color:       &color,
		Mileage:     &mileage,
		MileageUnit: "km",
		Status:      "available",
	}
}

func TestGenerateListingWithoutProviderAnswers503(t *testing.T) {
	svc := NewCopywritingService(nil, nil, nil)

	_, err := svc.GenerateListing(context.Background(), ListingRequest{CarID: "car-1"})
	require.Error(t, err)
	assert.Equal(t, 503, errors.GetHTTPStatus(err))

	_, err = svc.GenerateCaption(context.Background(), CaptionRequest{CarID: "car-1"})
	require.Error(t, err)
	assert.Equal(t, 503, errors.GetHTTPStatus(err))
}

func TestResolveTone(t *testing.T) {
	tone, err := resolveTone("")
	require.NoError(t, err)
	assert.Equal(t, "professional", tone)

	tone, err = resolveTone("enthusiast")
	require.NoError(t, err)
	assert.Equal(t, "enthusiast", tone)

	_, err = resolveTone("shouty")
	assert.True(t, errors.IsValidation(err))
}

func TestCarFactsSkipsAbsentFields(t *testing.T) {
	facts := carFacts(classicCar())

	assert.Contains(t, facts, "1973 Porsche 911 Carrera RS")
	assert.Contains(t, facts, "Exterior: Grand Prix White")
	assert.Contains(t, facts, "Mileage: 42000 km")
	assert.NotContains(t, facts, "VIN")
	assert.NotContains(t, facts, "Asking price")
}

func TestApplyStyleRulesEvaluatesConditions(t *testing.T) {
	svc := NewCopywritingService(nil, nil, nil)
	car := classicCar()

	var b strings.Builder
	err := svc.applyStyleRules(&b, car, []StyleRule{
		{When: "year < 1980", Instruction: "Mention the classic status."},
		{When: "mileage > 100000", Instruction: "Address the high mileage."},
		{Instruction: "Close with a call to action."},
	})
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "Mention the classic status.")
	assert.NotContains(t, out, "Address the high mileage.")
	assert.Contains(t, out, "Close with a call to action.")
}

func TestApplyStyleRulesRejectsBadRules(t *testing.T) {
	svc := NewCopywritingService(nil, nil, nil)
	car := classicCar()

	var b strings.Builder
	err := svc.applyStyleRules(&b, car, []StyleRule{{When: "year <", Instruction: "x"}})
	assert.True(t, errors.IsValidation(err))

	err = svc.applyStyleRules(&b, car, []StyleRule{{Instruction: "   "}})
	assert.True(t, errors.IsValidation(err))
}
