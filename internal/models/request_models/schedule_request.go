package request_models

import "tourplanner/internal/itinerary"

// SaveDayPreferencesRequest replaces the whole candidate snapshot of a day. Section
// names may use the provider's aliases, e.g. tourist_attractions.
type SaveDayPreferencesRequest struct {
	Candidates map[string][]itinerary.PlaceCandidate `json:"categorizedCandidates" binding:"required"`
}

type TogglePreferenceRequest struct {
	Category string `json:"category" binding:"required"`
	ItemID   string `json:"itemId" binding:"required"`
	Type     string `json:"type" binding:"required"`
}

type ReplaceItemRequest struct {
	PlaceID string              `json:"placeId"`
	Name    string              `json:"name" binding:"required"`
	Price   itinerary.FlexFloat `json:"price"`
}

type PaymentRequest struct {
	Method string `json:"method" binding:"required"`
}
