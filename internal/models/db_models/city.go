package db_models

// City is a destination the recommendation provider knows. ExternalID is the provider's
// own identifier.
type City struct {
	BaseModel
	ExternalID string `gorm:"index"`
	Name       string `gorm:"index"`
	NameASCII  string `gorm:"column:city_ascii;index"`
	Country    string
}

// ProviderID is the identifier sent to the recommendation provider.
func (c City) ProviderID() string {
	if c.ExternalID != "" {
		return c.ExternalID
	}
	return c.ID.String()
}
