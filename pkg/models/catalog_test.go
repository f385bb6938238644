package models

import (
	"encoding/json"
	"testing"
)

func testCatalog() *Catalog {
	return &Catalog{
		Devices: map[string]Device{
			"1.1.1": {Name: "Sensor A"},
			"1.1.2": {Name: ""},
		},
		GroupAddresses: map[string]GroupAddress{
			"1/2/3": {Name: "Temp"},
		},
	}
}

func TestCatalogDeviceName(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		key      string
		expected string
	}{
		{"1.1.1", "Sensor A"},
		{"1.1.2", UnresolvedName},
		{"9.9.9", UnresolvedName},
	}

	for _, tt := range tests {
		if got := cat.DeviceName(tt.key); got != tt.expected {
			t.Errorf("DeviceName(%q): expected %q, got %q", tt.key, tt.expected, got)
		}
	}
}

func TestCatalogGroupName(t *testing.T) {
	cat := testCatalog()

	if got := cat.GroupName("1/2/3"); got != "Temp" {
		t.Errorf("Expected 'Temp', got %q", got)
	}

	if got := cat.GroupName("7/7/7"); got != UnresolvedName {
		t.Errorf("Expected %q for unknown key, got %q", UnresolvedName, got)
	}
}

func TestNilCatalogLookups(t *testing.T) {
	var cat *Catalog

	if got := cat.DeviceName("1.1.1"); got != UnresolvedName {
		t.Errorf("Expected %q on nil catalog, got %q", UnresolvedName, got)
	}

	if got := cat.GroupName("1/2/3"); got != UnresolvedName {
		t.Errorf("Expected %q on nil catalog, got %q", UnresolvedName, got)
	}
}

func TestCatalogUnmarshal(t *testing.T) {
	raw := `{
		"devices": {
			"1.1.7": {
				"name": "Dimmer",
				"individual_address": "1.1.7",
				"channels": {
					"CH-1": {"text": "Living room", "function_text": "Dim", "communication_object_ids": ["co-1"]}
				},
				"communication_object_ids": ["co-1", "co-2"]
			}
		},
		"group_addresses": {
			"2/0/1": {"name": "Light", "dpt": {"main": 1, "sub": 1}}
		},
		"group_ranges": {
			"2": {"name": "Lighting", "group_ranges": {"2/0": {"name": "Ground floor"}}}
		},
		"communication_objects": {
			"co-1": {"name": "Switch", "number": 1, "group_address_links": ["2/0/1"]}
		},
		"topology": {
			"areas": {"a-1": {"address": 1, "name": "Backbone", "lines": {"l-1": {"address": 1, "name": "Main line"}}}}
		},
		"locations": {
			"b-1": {"name": "House", "identifier": "P-01", "devices": ["1.1.7"], "spaces": {"s-1": {"name": "Living room"}}}
		}
	}`

	var cat Catalog
	if err := json.Unmarshal([]byte(raw), &cat); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if cat.Devices["1.1.7"].Name != "Dimmer" {
		t.Errorf("Expected device name 'Dimmer', got %q", cat.Devices["1.1.7"].Name)
	}

	ga := cat.GroupAddresses["2/0/1"]
	if ga.DPT == nil || ga.DPT.Main != 1 {
		t.Errorf("Expected DPT main 1, got %+v", ga.DPT)
	}

	nested := cat.GroupRanges["2"].GroupRanges["2/0"]
	if nested.Name != "Ground floor" {
		t.Errorf("Expected nested range 'Ground floor', got %q", nested.Name)
	}

	if cat.Topology.Areas["a-1"].Lines["l-1"].Name != "Main line" {
		t.Errorf("Expected line name 'Main line', got %q", cat.Topology.Areas["a-1"].Lines["l-1"].Name)
	}

	if cat.Locations["b-1"].Spaces["s-1"].Name != "Living room" {
		t.Errorf("Expected nested space 'Living room', got %q", cat.Locations["b-1"].Spaces["s-1"].Name)
	}
}
