package tariff

import "emsp/entity/common"

type Tariff struct {
	CountryCode string              `json:"country_code,omitempty" bson:"country_code,omitempty" validate:"omitempty,len=2"`
	PartyId     string              `json:"party_id,omitempty" bson:"party_id,omitempty" validate:"omitempty,max=3"`
	Id          string              `json:"id" bson:"id" validate:"required,max=36"`
	Currency    string              `json:"currency" bson:"currency" validate:"required,len=3"`
	AltText     *common.DisplayText `json:"tariff_alt_text,omitempty" bson:"tariff_alt_text,omitempty" validate:"omitempty"`
	AltUrl      string              `json:"tariff_alt_url,omitempty" bson:"tariff_alt_url,omitempty" validate:"omitempty,url"`
	Elements    []*Element          `json:"elements" bson:"elements" validate:"required,dive"`
	EnergyMix   *common.EnergyMix   `json:"energy_mix,omitempty" bson:"energy_mix,omitempty" validate:"omitempty"`
	LastUpdated string              `json:"last_updated,omitempty" bson:"last_updated,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z"`
}

type Element struct {
	PriceComponents []*PriceComponent `json:"price_components" bson:"price_components" validate:"required,dive"`
	Restrictions    *Restrictions     `json:"restrictions,omitempty" bson:"restrictions,omitempty" validate:"omitempty"`
}
