package api

import (
	"errors"
	"math"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p MovePayload) Validate() error {
	switch p.MovementType {
	case "", "walk", "mount":
	default:
		return errors.New("unknown movement type")
	}
	return nil
}

func (p ListenerPayload) Validate() error {
	if math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y)) {
		return errors.New("listener position cannot be NaN")
	}
	return nil
}

func (p CleansePayload) Validate() error {
	if p.QuestID == "" {
		return errors.New("questId is required: cleansing must be authorized")
	}
	if p.Amount <= 0 || math.IsNaN(p.Amount) {
		return errors.New("cleanse amount must be positive")
	}
	return nil
}

func (p SourcePayload) Validate() error {
	if p.ID == "" {
		return errors.New("source id is required")
	}
	if math.IsNaN(p.Intensity) || p.Intensity < 0 {
		return errors.New("intensity must be a non-negative number")
	}
	if p.Radius < 0 {
		return errors.New("radius cannot be negative")
	}
	if p.DecayRate < 0 {
		return errors.New("decay rate cannot be negative")
	}
	return nil
}

func (p CompanionStatePayload) Validate() error {
	if p.CompanionID == "" {
		return errors.New("companionId is required")
	}
	if p.NewState == "" {
		return errors.New("newState is required")
	}
	return nil
}

func (p NarrativePayload) Validate() error {
	if p.Beat == "" {
		return errors.New("beat is required")
	}
	if math.IsNaN(p.Intensity) {
		return errors.New("intensity cannot be NaN")
	}
	return nil
}
