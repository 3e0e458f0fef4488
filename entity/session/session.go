package session

type Status string

const (
	Active      Status = "ACTIVE"
	Completed   Status = "COMPLETED"
	Invalid     Status = "INVALID"
	Pending     Status = "PENDING"
	Reservation Status = "RESERVATION"
)

type CdrToken struct {
	CountryCode string `json:"country_code" bson:"country_code"`
	PartyId     string `json:"party_id" bson:"party_id"`
	Uid         string `json:"uid" bson:"uid"`
	Type        string `json:"type" bson:"type"`
	ContractId  string `json:"contract_id" bson:"contract_id"`
}

type Price struct {
	ExclVat float64  `json:"excl_vat" bson:"excl_vat"`
	InclVat *float64 `json:"incl_vat,omitempty" bson:"incl_vat,omitempty"`
}

type Session struct {
	CountryCode            string   `json:"country_code" bson:"country_code"`
	PartyId                string   `json:"party_id" bson:"party_id"`
	Id                     string   `json:"id" bson:"id"`
	StartDateTime          string   `json:"start_date_time" bson:"start_date_time"`
	EndDateTime            string   `json:"end_date_time,omitempty" bson:"end_date_time,omitempty"`
	Kwh                    float64  `json:"kwh" bson:"kwh"`
	CdrToken               CdrToken `json:"cdr_token" bson:"cdr_token"`
	AuthMethod             string   `json:"auth_method" bson:"auth_method"`
	AuthorizationReference string   `json:"authorization_reference,omitempty" bson:"authorization_reference,omitempty"`
	LocationId             string   `json:"location_id" bson:"location_id"`
	EvseUid                string   `json:"evse_uid" bson:"evse_uid"`
	ConnectorId            string   `json:"connector_id" bson:"connector_id"`
	Currency               string   `json:"currency" bson:"currency"`
	TotalCost              *Price   `json:"total_cost,omitempty" bson:"total_cost,omitempty"`
	Status                 Status   `json:"status" bson:"status"`
	LastUpdated            string   `json:"last_updated" bson:"last_updated"`
}
