package location

import "emsp/entity/common"

type GeoLocation struct {
	Latitude  string `json:"latitude" bson:"latitude"`
	Longitude string `json:"longitude" bson:"longitude"`
}

type Connector struct {
	Id          string   `json:"id" bson:"id"`
	Standard    string   `json:"standard" bson:"standard"`
	Format      string   `json:"format" bson:"format"`
	PowerType   string   `json:"power_type" bson:"power_type"`
	MaxVoltage  int      `json:"max_voltage" bson:"max_voltage"`
	MaxAmperage int      `json:"max_amperage" bson:"max_amperage"`
	TariffIds   []string `json:"tariff_ids,omitempty" bson:"tariff_ids,omitempty"`
	LastUpdated string   `json:"last_updated" bson:"last_updated"`
}

type Evse struct {
	Uid          string       `json:"uid" bson:"uid"`
	EvseId       string       `json:"evse_id,omitempty" bson:"evse_id,omitempty"`
	Status       string       `json:"status" bson:"status"`
	Capabilities []string     `json:"capabilities,omitempty" bson:"capabilities,omitempty"`
	Connectors   []*Connector `json:"connectors" bson:"connectors"`
	LastUpdated  string       `json:"last_updated" bson:"last_updated"`
}

type Location struct {
	CountryCode string               `json:"country_code" bson:"country_code"`
	PartyId     string               `json:"party_id" bson:"party_id"`
	Id          string               `json:"id" bson:"id"`
	Publish     bool                 `json:"publish" bson:"publish"`
	Name        string               `json:"name,omitempty" bson:"name,omitempty"`
	Address     string               `json:"address" bson:"address"`
	City        string               `json:"city" bson:"city"`
	PostalCode  string               `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	Country     string               `json:"country" bson:"country"`
	Coordinates GeoLocation          `json:"coordinates" bson:"coordinates"`
	Evses       []*Evse              `json:"evses,omitempty" bson:"evses,omitempty"`
	Directions  []common.DisplayText `json:"directions,omitempty" bson:"directions,omitempty"`
	TimeZone    string               `json:"time_zone" bson:"time_zone"`
	EnergyMix   *common.EnergyMix    `json:"energy_mix,omitempty" bson:"energy_mix,omitempty"`
	LastUpdated string               `json:"last_updated" bson:"last_updated"`
}
