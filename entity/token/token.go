package token

// Type of the token used to authorize a charging session.
type Type string

const (
	AdHocUser Type = "AD_HOC_USER"
	AppUser   Type = "APP_USER"
	Other     Type = "OTHER"
	Rfid      Type = "RFID"
)

type WhitelistType string

const (
	Always         WhitelistType = "ALWAYS"
	Allowed        WhitelistType = "ALLOWED"
	AllowedOffline WhitelistType = "ALLOWED_OFFLINE"
	Never          WhitelistType = "NEVER"
)

type Token struct {
	CountryCode        string        `json:"country_code" bson:"country_code" validate:"required,len=2"`
	PartyId            string        `json:"party_id" bson:"party_id" validate:"required,max=3"`
	Uid                string        `json:"uid" bson:"uid" validate:"required,max=36"`
	Type               Type          `json:"type" bson:"type" validate:"required"`
	ContractId         string        `json:"contract_id" bson:"contract_id" validate:"required,max=36"`
	VisualNumber       string        `json:"visual_number,omitempty" bson:"visual_number,omitempty" validate:"omitempty,max=64"`
	Issuer             string        `json:"issuer" bson:"issuer" validate:"required,max=64"`
	GroupId            string        `json:"group_id,omitempty" bson:"group_id,omitempty" validate:"omitempty,max=36"`
	Valid              bool          `json:"valid" bson:"valid"`
	Whitelist          WhitelistType `json:"whitelist" bson:"whitelist" validate:"required"`
	Language           string        `json:"language,omitempty" bson:"language,omitempty" validate:"omitempty,len=2"`
	DefaultProfileType string        `json:"default_profile_type,omitempty" bson:"default_profile_type,omitempty"`
	LastUpdated        string        `json:"last_updated" bson:"last_updated" validate:"required"`
}

// Patch carries the fields of a partial token update; unset fields are left out of the body.
type Patch struct {
	Valid       *bool          `json:"valid,omitempty"`
	Whitelist   *WhitelistType `json:"whitelist,omitempty"`
	Language    *string        `json:"language,omitempty"`
	LastUpdated string         `json:"last_updated"`
}
