package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/user/bus-explorer-tui/pkg/models"
	"github.com/user/bus-explorer-tui/pkg/tree"
)

// BuildGroupTree arranges all group addresses into the main group → middle
// group → address hierarchy. Level names come from the catalog's nested
// group ranges; unnamed levels get numbered placeholders. Every leaf owns
// exactly its own address key.
func BuildGroupTree(cat *models.Catalog) tree.Data {
	if cat == nil || len(cat.GroupAddresses) == 0 {
		return tree.NewData(tree.NewBranch("ga_root", "Functions"))
	}

	rangeNames := map[string]string{}
	flattenRangeNames(cat.GroupRanges, rangeNames)

	subLeaves := map[string]map[string]*tree.Node{}
	mainSubs := map[string]map[string]struct{}{}
	for addr, ga := range cat.GroupAddresses {
		parts := strings.Split(addr, "/")
		if len(parts) != 3 {
			slog.Debug("skipping malformed group address", "address", addr)
			continue
		}
		mainKey := parts[0]
		subKey := parts[0] + "/" + parts[1]

		if subLeaves[subKey] == nil {
			subLeaves[subKey] = map[string]*tree.Node{}
		}
		label := fmt.Sprintf("(%s) %s", addr, nameOr(ga.Name, models.UnresolvedName))
		subLeaves[subKey][addr] = tree.NewLeaf("ga_"+addr, label, addr)

		if mainSubs[mainKey] == nil {
			mainSubs[mainKey] = map[string]struct{}{}
		}
		mainSubs[mainKey][subKey] = struct{}{}
	}

	mainNodes := map[string]*tree.Node{}
	for mainKey, subKeys := range mainSubs {
		subNodes := map[string]*tree.Node{}
		for subKey := range subKeys {
			label := fmt.Sprintf("(%s) %s", subKey, nameOr(rangeNames[subKey], "Middle group "+subKey))
			id := "ga_sub_" + strings.ReplaceAll(subKey, "/", "_")
			subNodes[subKey] = tree.NewBranch(id, label, tree.SortedByKey(subLeaves[subKey])...)
		}
		label := fmt.Sprintf("(%s) %s", mainKey, nameOr(rangeNames[mainKey], "Main group "+mainKey))
		mainNodes[mainKey] = tree.NewBranch("ga_main_"+mainKey, label, tree.SortedByKey(subNodes)...)
	}

	return tree.NewData(tree.NewBranch("ga_root", "Functions", tree.SortedByKey(mainNodes)...))
}

// flattenRangeNames walks the nested group ranges and records every named
// level under its address key, whatever its depth.
func flattenRangeNames(ranges map[string]models.GroupRange, out map[string]string) {
	for addr, r := range ranges {
		if r.Name != "" {
			out[addr] = r.Name
		}
		flattenRangeNames(r.GroupRanges, out)
	}
}

// BuildTopologyTree arranges devices under area → line by their individual
// address, expanding each device into channels and communication objects.
func BuildTopologyTree(cat *models.Catalog) tree.Data {
	if cat == nil {
		return tree.NewData(tree.NewBranch("pa_root", "Topology"))
	}

	areaNames := map[string]string{}
	lineNames := map[string]string{}
	for _, area := range cat.Topology.Areas {
		areaID := strconv.Itoa(area.Address)
		areaNames[areaID] = area.Name
		for _, line := range area.Lines {
			lineNames[areaID+"."+strconv.Itoa(line.Address)] = line.Name
		}
	}

	lineDevices := map[string]map[string]*tree.Node{}
	for pa, device := range cat.Devices {
		parts := strings.Split(pa, ".")
		if len(parts) != 3 {
			slog.Debug("skipping malformed device address", "address", pa)
			continue
		}
		lineID := parts[0] + "." + parts[1]
		if lineDevices[lineID] == nil {
			lineDevices[lineID] = map[string]*tree.Node{}
		}
		lineDevices[lineID][pa] = deviceNode("dev_"+pa, pa, device, cat)
	}

	areaLines := map[string]map[string]*tree.Node{}
	for lineID, devices := range lineDevices {
		areaID, _, _ := strings.Cut(lineID, ".")
		label := "Line " + lineID
		if name := lineNames[lineID]; name != "" {
			label = fmt.Sprintf("(%s) %s", lineID, name)
		}
		if areaLines[areaID] == nil {
			areaLines[areaID] = map[string]*tree.Node{}
		}
		areaLines[areaID][lineID] = tree.NewBranch("pa_line_"+lineID, label, tree.SortedByKey(devices)...)
	}

	areaNodes := map[string]*tree.Node{}
	for areaID, lines := range areaLines {
		label := "Area " + areaID
		if name := areaNames[areaID]; name != "" {
			label = fmt.Sprintf("(%s) %s", areaID, name)
		}
		areaNodes[areaID] = tree.NewBranch("pa_area_"+areaID, label, tree.SortedByKey(lines)...)
	}

	return tree.NewData(tree.NewBranch("pa_root", "Topology", tree.SortedByKey(areaNodes)...))
}

// BuildBuildingTree arranges devices by their place in the building: the
// nested spaces of the location export, each device expanded like in the
// topology tree.
func BuildBuildingTree(cat *models.Catalog) tree.Data {
	if cat == nil {
		return tree.NewData(tree.NewBranch("bldg_root", "Building"))
	}
	return tree.NewData(tree.NewBranch("bldg_root", "Building", spaceNodes(cat.Locations, cat)...))
}

func spaceNodes(spaces map[string]models.Space, cat *models.Catalog) []*tree.Node {
	nodes := map[string]*tree.Node{}
	for key, space := range spaces {
		nodes[key] = spaceNode(key, space, cat)
	}
	return tree.SortedByKey(nodes)
}

func spaceNode(key string, space models.Space, cat *models.Catalog) *tree.Node {
	id := space.Identifier
	if id == "" {
		id = key
	}

	var children []*tree.Node
	for _, pa := range space.Devices {
		device, ok := cat.Devices[pa]
		if !ok {
			continue
		}
		children = append(children, deviceNode("bldg_dev_"+pa, pa, device, cat))
	}
	children = append(children, spaceNodes(space.Spaces, cat)...)

	return tree.NewBranch("loc_"+id, nameOr(space.Name, "Unnamed area"), children...)
}

// deviceNode expands one device into channel branches and communication
// object leaves. Channels sharing a display name merge the way the vendor
// export groups functions; objects not reachable through any channel attach
// to the device directly.
func deviceNode(id, pa string, device models.Device, cat *models.Catalog) *tree.Node {
	chIDs := make([]string, 0, len(device.Channels))
	for chID := range device.Channels {
		chIDs = append(chIDs, chID)
	}
	sort.Slice(chIDs, func(i, j int) bool { return tree.Less(chIDs[i], chIDs[j]) })

	type channelGroup struct {
		id  string
		cos []string
	}
	processed := map[string]struct{}{}
	groups := map[string]*channelGroup{}
	for _, chID := range chIDs {
		ch := device.Channels[chID]
		label := smartName(ch.Text, ch.FunctionText, ch.Name, "Channel "+chID)
		g := groups[label]
		if g == nil {
			g = &channelGroup{id: chID}
			groups[label] = g
		}
		g.cos = append(g.cos, ch.CommunicationObjectIDs...)
		for _, coID := range ch.CommunicationObjectIDs {
			processed[coID] = struct{}{}
		}
	}

	channelNodes := map[string]*tree.Node{}
	for label, g := range groups {
		channelNodes[label] = tree.NewBranch("ch_"+pa+"_"+g.id, label, objectLeaves(g.cos, cat)...)
	}

	var leftovers []string
	for _, coID := range device.CommunicationObjectIDs {
		if _, ok := processed[coID]; !ok {
			leftovers = append(leftovers, coID)
		}
	}

	children := tree.SortedByKey(channelNodes)
	children = append(children, objectLeaves(leftovers, cat)...)

	label := fmt.Sprintf("(%s) %s", pa, nameOr(device.Name, models.UnresolvedName))
	return tree.NewBranch(id, label, children...)
}

// objectLeaves builds one leaf per known communication object, each owning
// its linked group addresses.
func objectLeaves(ids []string, cat *models.Catalog) []*tree.Node {
	var leaves []*tree.Node
	for _, id := range ids {
		co, ok := cat.CommunicationObjects[id]
		if !ok {
			continue
		}
		name := smartName(co.Text, co.FunctionText, co.Name, "CO-"+id)
		label := fmt.Sprintf("%d: %s -> [%s]", co.Number, name, strings.Join(co.GroupAddressLinks, ", "))
		leaves = append(leaves, tree.NewLeaf("co_"+id, label, co.GroupAddressLinks...))
	}
	return leaves
}

// smartName picks a display name the way the vendor export is usually read:
// text plus function_text joined with " - ", falling back to the raw name,
// then to the given placeholder.
func smartName(text, functionText, name, fallback string) string {
	var parts []string
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(functionText); t != "" {
		parts = append(parts, t)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " - ")
	}
	if t := strings.TrimSpace(name); t != "" {
		return t
	}
	return fallback
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return fallback
}
