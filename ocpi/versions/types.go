package versions

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type ModuleId string

const (
	Cdrs             ModuleId = "cdrs"
	ChargingProfiles ModuleId = "chargingprofiles"
	Commands         ModuleId = "commands"
	Credentials      ModuleId = "credentials"
	HubClientInfo    ModuleId = "hubclientinfo"
	Locations        ModuleId = "locations"
	Sessions         ModuleId = "sessions"
	Tariffs          ModuleId = "tariffs"
	Tokens           ModuleId = "tokens"
)

type Role string

const (
	Sender   Role = "SENDER"
	Receiver Role = "RECEIVER"
)

// Version is one entry of the versions list a party advertises.
type Version struct {
	Version string `json:"version"`
	Url     string `json:"url"`
}

type Endpoint struct {
	Identifier ModuleId `json:"identifier"`
	Role       Role     `json:"role,omitempty"`
	Url        string   `json:"url"`
}

type VersionDetail struct {
	Version   string     `json:"version"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint looks up the url for a module and role. Endpoints published without a
// role (OCPI 2.1.1) match any role when no exact pair exists.
func (d *VersionDetail) Endpoint(module ModuleId, role Role) (string, bool) {
	if d == nil {
		return "", false
	}
	roleless := ""
	for _, e := range d.Endpoints {
		if !strings.EqualFold(string(e.Identifier), string(module)) {
			continue
		}
		if e.Role == role {
			return e.Url, true
		}
		if e.Role == "" && roleless == "" {
			roleless = e.Url
		}
	}
	return roleless, roleless != ""
}

// normalize drops duplicate (module, role) pairs, keeping the first one seen.
func (d *VersionDetail) normalize() {
	type key struct {
		module ModuleId
		role   Role
	}
	seen := make(map[key]bool, len(d.Endpoints))
	endpoints := d.Endpoints[:0]
	for _, e := range d.Endpoints {
		k := key{ModuleId(strings.ToLower(string(e.Identifier))), e.Role}
		if seen[k] {
			continue
		}
		seen[k] = true
		endpoints = append(endpoints, e)
	}
	d.Endpoints = endpoints
}

// Compare orders version ids numerically ("2.1.1" < "2.2" < "2.2.1"); ids that are
// not version numbers fall back to string order and sort below numeric ones.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	}
	return strings.Compare(a, b)
}

// Highest returns the maximum version id, or "" for an empty list.
func Highest(list []Version) string {
	highest := ""
	for _, v := range list {
		if highest == "" || Compare(v.Version, highest) > 0 {
			highest = v.Version
		}
	}
	return highest
}

func sortVersions(list []Version) {
	sort.Slice(list, func(i, j int) bool {
		return Compare(list[i].Version, list[j].Version) < 0
	})
}
