package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/ai"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/expression"
)

// Budget for one text generation call
const copyTimeout = 60 * time.Second

// How many analyzed image captions a caption prompt may cite
const maxGroundingCaptions = 5

var copyTones = map[string]bool{
	"professional": true,
	"enthusiast":   true,
	"casual":       true,
	"formal":       true,
}

var captionLengths = map[string]string{
	"short":  "one punchy sentence",
	"medium": "two to three sentences",
	"long":   "a short paragraph of four to five sentences",
}

// StyleRule adds an instruction to the prompt when its condition holds for
// the car. An empty condition always applies.
type StyleRule struct {
	When        string `json:"when"`
	Instruction string `json:"instruction"`
}

// CopywritingService turns car records into listing prose and social
// captions. A nil provider leaves the endpoints up but answering 503.
type CopywritingService struct {
	provider ai.Provider
	cars     *persistence.CarRepository
	images   *persistence.ImageRepository
	engine   *expression.Engine
}

// NewCopywritingService creates a new CopywritingService
func NewCopywritingService(provider ai.Provider, cars *persistence.CarRepository, images *persistence.ImageRepository) *CopywritingService {
	return &CopywritingService{
		provider: provider,
		cars:     cars,
		images:   images,
		engine:   expression.NewEngine(),
	}
}

// ListingRequest asks for sale-listing prose for one car
type ListingRequest struct {
	CarID      string      `json:"car_id"`
	Tone       string      `json:"tone"`
	Paragraphs int         `json:"paragraphs"`
	Highlights []string    `json:"highlights"`
	StyleRules []StyleRule `json:"style_rules"`
}

// CaptionRequest asks for a social post caption for one car
type CaptionRequest struct {
	CarID            string      `json:"car_id"`
	Platform         string      `json:"platform"`
	Tone             string      `json:"tone"`
	Length           string      `json:"length"`
	UseImageCaptions bool        `json:"use_image_captions"`
	Hashtags         bool        `json:"hashtags"`
	StyleRules       []StyleRule `json:"style_rules"`
}

// CopyResult is one generated text plus the backend that wrote it
type CopyResult struct {
	CarID    string `json:"car_id"`
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// GenerateListing writes dealership listing prose for a car
func (s *CopywritingService) GenerateListing(ctx context.Context, req ListingRequest) (*CopyResult, error) {
	if s.provider == nil {
		return nil, errors.NewUnavailableError("Copywriting", "no AI provider configured")
	}
	car, err := s.loadCar(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	tone, err := resolveTone(req.Tone)
	if err != nil {
		return nil, err
	}

	paragraphs := req.Paragraphs
	if paragraphs <= 0 {
		paragraphs = 3
	}
	if paragraphs > 5 {
		paragraphs = 5
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a copywriter for a high-end automotive dealership.\n")
	fmt.Fprintf(&b, "Write a %s sale listing of %d paragraphs for this vehicle. Plain text only, no headings.\n\n", tone, paragraphs)
	b.WriteString(carFacts(car))
	if len(req.Highlights) > 0 {
		b.WriteString("\nEmphasize: " + strings.Join(req.Highlights, ", ") + "\n")
	}
	if err := s.applyStyleRules(&b, car, req.StyleRules); err != nil {
		return nil, err
	}

	return s.generate(ctx, car, b.String(), "listing")
}

// GenerateCaption writes a social caption for a car, optionally grounded on
// what the vision pass saw in its analyzed images.
func (s *CopywritingService) GenerateCaption(ctx context.Context, req CaptionRequest) (*CopyResult, error) {
	if s.provider == nil {
		return nil, errors.NewUnavailableError("Copywriting", "no AI provider configured")
	}
	car, err := s.loadCar(ctx, req.CarID)
	if err != nil {
		return nil, err
	}

	platform := string(constants.PlatformInstagram)
	if req.Platform != "" {
		if !isValidPlatform(req.Platform) {
			return nil, errors.NewValidationError("platform", fmt.Sprintf("Unknown platform: %s", req.Platform))
		}
		platform = req.Platform
	}
	tone, err := resolveTone(req.Tone)
	if err != nil {
		return nil, err
	}
	length := "medium"
	if req.Length != "" {
		if _, ok := captionLengths[req.Length]; !ok {
			return nil, errors.NewValidationError("length", "Length must be short, medium or long")
		}
		length = req.Length
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a social media copywriter for an automotive media studio.\n")
	fmt.Fprintf(&b, "Write a %s %s caption for this vehicle: %s. Plain text only.\n\n", tone, platform, captionLengths[length])
	b.WriteString(carFacts(car))

	if req.UseImageCaptions {
		captions, err := s.analyzedCaptions(ctx, car.ID)
		if err != nil {
			log.Printf("⚠️ Caption grounding unavailable for car %s: %v", car.ID, err)
		} else if len(captions) > 0 {
			b.WriteString("\nWhat our photographers captured:\n")
			for _, c := range captions {
				b.WriteString("- " + c + "\n")
			}
		}
	}
	if req.Hashtags {
		b.WriteString("\nFinish with 3-5 fitting hashtags.\n")
	} else {
		b.WriteString("\nNo hashtags.\n")
	}
	if err := s.applyStyleRules(&b, car, req.StyleRules); err != nil {
		return nil, err
	}

	return s.generate(ctx, car, b.String(), "caption")
}

func (s *CopywritingService) loadCar(ctx context.Context, id string) (*models.Car, error) {
	if id == "" {
		return nil, errors.NewValidationError("car_id", "Car ID is required")
	}
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, errors.NewNotFoundError("Car", id)
	}
	return car, nil
}

func (s *CopywritingService) generate(ctx context.Context, car *models.Car, prompt, kind string) (*CopyResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()

	text, err := s.provider.GenerateText(callCtx, prompt)
	if err != nil {
		return nil, errors.NewUnavailableError("Copywriting", err.Error())
	}
	text = strings.TrimSpace(text)

	log.Printf("📝 Generated %s copy for %s (%d chars)", kind, car.DisplayName(), len(text))
	return &CopyResult{CarID: car.ID, Text: text, Provider: s.provider.Name()}, nil
}

// applyStyleRules appends the instructions whose conditions hold for the car
func (s *CopywritingService) applyStyleRules(b *strings.Builder, car *models.Car, rules []StyleRule) error {
	env := carEnv(car)
	for i, rule := range rules {
		if strings.TrimSpace(rule.Instruction) == "" {
			return errors.NewValidationError("style_rules", fmt.Sprintf("Rule %d has no instruction", i))
		}
		if rule.When != "" {
			applies, err := s.engine.EvaluateBool(rule.When, env)
			if err != nil {
				return errors.NewValidationError("style_rules", fmt.Sprintf("Rule %d: %v", i, err))
			}
			if !applies {
				continue
			}
		}
		b.WriteString("\n" + strings.TrimSpace(rule.Instruction) + "\n")
	}
	return nil
}

// analyzedCaptions collects what the vision pass wrote for the car's images
func (s *CopywritingService) analyzedCaptions(ctx context.Context, carID string) ([]string, error) {
	images, err := s.images.ListByCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	captions := make([]string, 0, maxGroundingCaptions)
	for _, img := range images {
		if img.AnalysisStatus != string(constants.AnalysisComplete) || img.Caption == nil || *img.Caption == "" {
			continue
		}
		captions = append(captions, *img.Caption)
		if len(captions) == maxGroundingCaptions {
			break
		}
	}
	return captions, nil
}

func resolveTone(tone string) (string, error) {
	if tone == "" {
		return "professional", nil
	}
	if !copyTones[tone] {
		return "", errors.NewValidationError("tone", fmt.Sprintf("Unknown tone: %s", tone))
	}
	return tone, nil
}

// carEnv exposes car fields to style rule conditions
func carEnv(c *models.Car) map[string]interface{} {
	env := map[string]interface{}{
		"make":   c.Make,
		"model":  c.Model,
		"year":   c.Year,
		"status": c.Status,
	}
	if c.Trim != nil {
		env["trim"] = *c.Trim
	} else {
		env["trim"] = ""
	}
	if c.Mileage != nil {
		env["mileage"] = *c.Mileage
	} else {
		env["mileage"] = 0
	}
	if c.PriceAsking != nil {
		env["price_asking"] = *c.PriceAsking
	} else {
		env["price_asking"] = 0.0
	}
	if c.Horsepower != nil {
		env["horsepower"] = *c.Horsepower
	} else {
		env["horsepower"] = 0
	}
	if c.Condition != nil {
		env["condition"] = *c.Condition
	} else {
		env["condition"] = ""
	}
	return env
}

// carFacts renders the car record as prompt-friendly fact lines
func carFacts(c *models.Car) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vehicle: %s\n", c.DisplayName())
	if c.VIN != nil && *c.VIN != "" {
		fmt.Fprintf(&b, "VIN: %s\n", *c.VIN)
	}
	if c.Color != nil && *c.Color != "" {
		fmt.Fprintf(&b, "Exterior: %s\n", *c.Color)
	}
	if c.InteriorColor != nil && *c.InteriorColor != "" {
		fmt.Fprintf(&b, "Interior: %s\n", *c.InteriorColor)
	}
	if c.Mileage != nil {
		fmt.Fprintf(&b, "Mileage: %d %s\n", *c.Mileage, c.MileageUnit)
	}
	if c.Engine != nil && *c.Engine != "" {
		fmt.Fprintf(&b, "Engine: %s\n", *c.Engine)
	}
	if c.Transmission != nil && *c.Transmission != "" {
		fmt.Fprintf(&b, "Transmission: %s\n", *c.Transmission)
	}
	if c.Horsepower != nil {
		fmt.Fprintf(&b, "Horsepower: %d\n", *c.Horsepower)
	}
	if c.Condition != nil && *c.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", *c.Condition)
	}
	if c.Location != nil && *c.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", *c.Location)
	}
	if c.PriceAsking != nil {
		fmt.Fprintf(&b, "Asking price: %.0f\n", *c.PriceAsking)
	}
	if c.Description != nil && *c.Description != "" {
		fmt.Fprintf(&b, "Notes: %s\n", *c.Description)
	}
	return b.String()
}
