package ui

import (
	"fmt"
	"time"

	"github.com/user/bus-explorer-tui/pkg/core"
	"github.com/user/bus-explorer-tui/pkg/logfile"
	"github.com/user/bus-explorer-tui/pkg/models"
)

// DemoCatalog returns a small synthetic installation with lighting,
// heating and weather functions across two lines, so all three trees have
// content without any project file.
func DemoCatalog() *models.Catalog {
	dpt := func(main, sub int) *models.DatapointType {
		return &models.DatapointType{Main: main, Sub: sub}
	}

	return &models.Catalog{
		Devices: map[string]models.Device{
			"1.1.1": {
				Name: "Push Button Hall",
				Channels: map[string]models.Channel{
					"ch1": {Text: "Rocker 1", FunctionText: "Switching", CommunicationObjectIDs: []string{"co-1"}},
				},
			},
			"1.1.2": {
				Name: "Dimmer Living Room",
				Channels: map[string]models.Channel{
					"ch1": {Text: "Output A", FunctionText: "Dimming", CommunicationObjectIDs: []string{"co-2", "co-3"}},
				},
			},
			"1.1.10": {Name: "Temperature Sensor Living Room", CommunicationObjectIDs: []string{"co-4"}},
			"1.1.11": {Name: "Heating Actuator"},
			"1.2.1":  {Name: "Weather Station Roof"},
		},
		GroupAddresses: map[string]models.GroupAddress{
			"1/0/1": {Name: "Hall Light", DPT: dpt(1, 1)},
			"1/0/2": {Name: "Living Room Light", DPT: dpt(1, 1)},
			"1/0/3": {Name: "Kitchen Light", DPT: dpt(1, 1)},
			"1/1/1": {Name: "Living Room Dim Level", DPT: dpt(5, 1)},
			"2/0/1": {Name: "Temperature Living Room", DPT: dpt(9, 1)},
			"2/0/2": {Name: "Temperature Bedroom", DPT: dpt(9, 1)},
			"2/1/1": {Name: "Setpoint Living Room", DPT: dpt(9, 1)},
			"3/0/1": {Name: "Wind Speed", DPT: dpt(9, 5)},
			"3/0/2": {Name: "Brightness", DPT: dpt(9, 4)},
			"3/0/3": {Name: "Rain Alarm", DPT: dpt(1, 5)},
		},
		GroupRanges: map[string]models.GroupRange{
			"1": {Name: "Lighting", GroupRanges: map[string]models.GroupRange{
				"1/0": {Name: "Switching"},
				"1/1": {Name: "Dimming"},
			}},
			"2": {Name: "Heating", GroupRanges: map[string]models.GroupRange{
				"2/0": {Name: "Temperatures"},
				"2/1": {Name: "Setpoints"},
			}},
			"3": {Name: "Weather", GroupRanges: map[string]models.GroupRange{
				"3/0": {Name: "Sensors"},
			}},
		},
		CommunicationObjects: map[string]models.CommObject{
			"co-1": {Text: "Switch", FunctionText: "On/Off", Number: 1, GroupAddressLinks: []string{"1/0/1"}},
			"co-2": {Text: "Switch", FunctionText: "On/Off", Number: 1, GroupAddressLinks: []string{"1/0/2"}},
			"co-3": {Text: "Dim value", FunctionText: "Set", Number: 2, GroupAddressLinks: []string{"1/1/1"}},
			"co-4": {Text: "Temperature", FunctionText: "Send", Number: 1, GroupAddressLinks: []string{"2/0/1"}},
		},
		Topology: models.Topology{
			Areas: map[string]models.Area{
				"area-1": {Address: 1, Name: "Backbone", Lines: map[string]models.Line{
					"line-1": {Address: 1, Name: "Ground Floor"},
					"line-2": {Address: 2, Name: "Roof"},
				}},
			},
		},
		Locations: map[string]models.Space{
			"house": {Type: "Building", Name: "Demo House", Spaces: map[string]models.Space{
				"gf": {Type: "Floor", Name: "Ground Floor", Spaces: map[string]models.Space{
					"hall":   {Type: "Room", Name: "Hall", Devices: []string{"1.1.1"}},
					"living": {Type: "Room", Name: "Living Room", Devices: []string{"1.1.2", "1.1.10"}},
				}},
				"roof": {Type: "Floor", Name: "Roof", Devices: []string{"1.2.1"}},
			}},
		},
	}
}

// DemoSnapshot generates an hour of telegram traffic against the demo
// catalog. The snapshot behaves like a static archive and is never tailed.
func DemoSnapshot(cat *models.Catalog) *core.Snapshot {
	now := time.Now()
	at := func(minutesAgo int) string {
		return now.Add(-time.Duration(minutesAgo) * time.Minute).Format("2006-01-02 15:04:05.000")
	}
	rec := func(minutesAgo int, source, dest, payload string) models.LogRecord {
		return logfile.Enrich(logfile.ParsedLine{
			Timestamp:  at(minutesAgo),
			Source:     source,
			Dest:       dest,
			Payload:    payload,
			HasPayload: payload != "",
		}, cat)
	}

	records := []models.LogRecord{
		rec(60, "1.1.1", "1/0/1", "On"),
		rec(58, "1.1.2", "1/0/2", "On"),
		rec(57, "1.1.2", "1/1/1", "45%"),
		rec(55, "1.1.10", "2/0/1", "20.8"),
		rec(52, "1.2.1", "3/0/2", "12400"),
		rec(50, "1.1.11", "2/1/1", "21.0"),
		rec(48, "1.1.1", "1/0/1", "Off"),
		rec(45, "1.2.1", "3/0/1", "3.4"),
		rec(42, "1.1.2", "1/1/1", "70%"),
		rec(40, "1.1.10", "2/0/1", "21.1"),
		rec(35, "1.2.1", "3/0/3", "Alarm"),
		rec(34, "1.2.1", "3/0/1", "14.2"),
		rec(30, "1.1.10", "2/0/2", "19.6"),
		rec(28, "1.1.2", "1/0/3", "On"),
	}

	// Generated tail so scrolling and eviction have something to chew on
	cycle := []struct {
		source, dest, payload string
	}{
		{"1.1.10", "2/0/1", "21.%d"},
		{"1.2.1", "3/0/2", "1%d000"},
		{"1.2.1", "3/0/1", "%d.1"},
		{"1.1.2", "1/1/1", "%d0%%"},
	}
	for i := 0; i < 48; i++ {
		step := cycle[i%len(cycle)]
		records = append(records, rec(25-i/2, step.source, step.dest, fmt.Sprintf(step.payload, i%9)))
	}

	return &core.Snapshot{
		Path:    "demo",
		Format:  models.FormatPipe,
		Records: records,
		Archive: true,
	}
}
