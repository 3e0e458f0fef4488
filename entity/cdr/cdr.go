package cdr

import "emsp/entity/session"

type Cdr struct {
	CountryCode      string           `json:"country_code" bson:"country_code"`
	PartyId          string           `json:"party_id" bson:"party_id"`
	Id               string           `json:"id" bson:"id"`
	StartDateTime    string           `json:"start_date_time" bson:"start_date_time"`
	EndDateTime      string           `json:"end_date_time" bson:"end_date_time"`
	SessionId        string           `json:"session_id,omitempty" bson:"session_id,omitempty"`
	CdrToken         session.CdrToken `json:"cdr_token" bson:"cdr_token"`
	AuthMethod       string           `json:"auth_method" bson:"auth_method"`
	Currency         string           `json:"currency" bson:"currency"`
	TariffIds        []string         `json:"tariff_ids,omitempty" bson:"tariff_ids,omitempty"`
	TotalCost        session.Price    `json:"total_cost" bson:"total_cost"`
	TotalEnergy      float64          `json:"total_energy" bson:"total_energy"`
	TotalTime        float64          `json:"total_time" bson:"total_time"`
	TotalParkingTime float64          `json:"total_parking_time,omitempty" bson:"total_parking_time,omitempty"`
	Credit           bool             `json:"credit,omitempty" bson:"credit,omitempty"`
	LastUpdated      string           `json:"last_updated" bson:"last_updated"`
}
