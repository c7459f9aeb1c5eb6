package db_models

// All lists the tables the service owns, in migration order.
func All() []any {
	return []any{
		&City{},
		&Tour{},
		&TourFlight{},
		&TourDay{},
		&TourItem{},
		&Payment{},
		&UserPreference{},
	}
}
