package models

// Catalog is the static, pre-parsed project description. It maps protocol
// addresses to human names and hierarchy and is treated read-only once
// loaded.
type Catalog struct {
	Devices              map[string]Device       `json:"devices"`
	GroupAddresses       map[string]GroupAddress `json:"group_addresses"`
	GroupRanges          map[string]GroupRange   `json:"group_ranges"`
	CommunicationObjects map[string]CommObject   `json:"communication_objects"`
	Topology             Topology                `json:"topology"`
	Locations            map[string]Space        `json:"locations"`
}

// Device is one bus participant, keyed by its individual address ("1.1.1").
type Device struct {
	Name                   string             `json:"name"`
	IndividualAddress      string             `json:"individual_address,omitempty"`
	Channels               map[string]Channel `json:"channels,omitempty"`
	CommunicationObjectIDs []string           `json:"communication_object_ids,omitempty"`
}

// Channel groups the communication objects of one device function.
type Channel struct {
	Name                   string   `json:"name,omitempty"`
	Text                   string   `json:"text,omitempty"`
	FunctionText           string   `json:"function_text,omitempty"`
	CommunicationObjectIDs []string `json:"communication_object_ids,omitempty"`
}

// GroupAddress is one logical datapoint, keyed by "main/middle/sub".
type GroupAddress struct {
	Name string         `json:"name"`
	DPT  *DatapointType `json:"dpt,omitempty"`
}

// DatapointType describes the value encoding of a group address.
type DatapointType struct {
	Main int `json:"main"`
	Sub  int `json:"sub"`
}

// GroupRange names a level of the group address hierarchy. Ranges nest.
type GroupRange struct {
	Name        string                `json:"name"`
	GroupRanges map[string]GroupRange `json:"group_ranges,omitempty"`
}

// CommObject is a device-side endpoint linked to group addresses.
type CommObject struct {
	Name              string   `json:"name,omitempty"`
	Text              string   `json:"text,omitempty"`
	FunctionText      string   `json:"function_text,omitempty"`
	Number            int      `json:"number,omitempty"`
	GroupAddressLinks []string `json:"group_address_links,omitempty"`
}

// Topology is the physical area/line layout of the installation.
type Topology struct {
	Areas map[string]Area `json:"areas"`
}

// Area is one backbone segment.
type Area struct {
	Address int             `json:"address"`
	Name    string          `json:"name,omitempty"`
	Lines   map[string]Line `json:"lines,omitempty"`
}

// Line is one bus line inside an area.
type Line struct {
	Address int    `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Space is a node of the building structure; spaces nest and list the
// individual addresses of the devices installed in them.
type Space struct {
	Type       string           `json:"type,omitempty"`
	Identifier string           `json:"identifier,omitempty"`
	Name       string           `json:"name"`
	Devices    []string         `json:"devices,omitempty"`
	Spaces     map[string]Space `json:"spaces,omitempty"`
}

// DeviceName resolves a device key to its display name, falling back to
// UnresolvedName for unknown or unnamed devices.
func (c *Catalog) DeviceName(key string) string {
	if c == nil {
		return UnresolvedName
	}
	if d, ok := c.Devices[key]; ok && d.Name != "" {
		return d.Name
	}
	return UnresolvedName
}

// GroupName resolves a group address key to its display name, falling back
// to UnresolvedName.
func (c *Catalog) GroupName(key string) string {
	if c == nil {
		return UnresolvedName
	}
	if ga, ok := c.GroupAddresses[key]; ok && ga.Name != "" {
		return ga.Name
	}
	return UnresolvedName
}
