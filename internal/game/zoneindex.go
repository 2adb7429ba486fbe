package game

import "sort"

// ZoneIndex groups object ids by (seat, zone) for O(1) lookup. It is
// entirely derived from State.Objects and rebuilt on every snapshot;
// never hand-edit it.
type ZoneIndex map[Seat]map[Zone][]ObjectID

// BuildZoneIndex is a pure function of the object map. Buckets are
// keyed by the controller seat and ordered by ZonePos (library order,
// hand order), with the object id breaking ties so the result is
// deterministic.
func BuildZoneIndex(objects map[ObjectID]GameObject) ZoneIndex {
	ix := make(ZoneIndex)
	for id, obj := range objects {
		zones := ix[obj.Controller]
		if zones == nil {
			zones = make(map[Zone][]ObjectID)
			ix[obj.Controller] = zones
		}
		zones[obj.Zone] = append(zones[obj.Zone], id)
	}
	for _, zones := range ix {
		for _, ids := range zones {
			sort.Slice(ids, func(i, j int) bool {
				a, b := objects[ids[i]], objects[ids[j]]
				if a.ZonePos != b.ZonePos {
					return a.ZonePos < b.ZonePos
				}
				return ids[i] < ids[j]
			})
		}
	}
	return ix
}

// Objects returns the ordered ids in one (seat, zone) bucket. A missing
// bucket is an empty slice, not an error.
func (ix ZoneIndex) Objects(seat Seat, zone Zone) []ObjectID {
	return ix[seat][zone]
}

// Count returns the number of objects in one bucket.
func (ix ZoneIndex) Count(seat Seat, zone Zone) int {
	return len(ix[seat][zone])
}
