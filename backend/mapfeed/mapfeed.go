// Package mapfeed clusters report pins for the map screen. Pins are
// bucketed into S2 cells at a level derived from the viewport size; dense
// cells collapse into a single counted cluster.
package mapfeed

import (
	"civicfix/backend/server/api"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

type aggrUnit struct {
	cnt         int64
	containment [4]bool // one per child cell
	pin         s2.Point
	origPins    []*api.MapResult
}

type Aggregator struct {
	level  int
	points map[s2.CellID][]*api.MapResult
	aggrs  map[s2.CellID]*aggrUnit
}

const (
	expectedCells       = 16
	minLevel            = 2
	maxLevel            = 18
	maxPinsPerCluster   = 10
	weightDiffThreshold = 8
)

// CellBaseLevel finds the S2 cell level at which the viewport is covered
// by roughly expectedCells cells.
func CellBaseLevel(vp *api.ViewPort, center *api.Point) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}

	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lon))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

func NewAggregator(vp *api.ViewPort, center *api.Point) Aggregator {
	return Aggregator{
		level:  CellBaseLevel(vp, center),
		points: make(map[s2.CellID][]*api.MapResult),
		aggrs:  make(map[s2.CellID]*aggrUnit),
	}
}

func (a *Aggregator) AddPin(pin api.MapResult) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(pin.Latitude, pin.Longitude))
	parent := pc.Parent(maxLevel)
	a.points[parent] = append(a.points[parent], &pin)
}

// ToArray flattens the aggregation: sparse cells keep their original pins,
// dense cells become one cluster entry with a count and a centroid pin.
func (a *Aggregator) ToArray() []api.MapResult {
	a.aggregate()
	r := make([]api.MapResult, 0, len(a.aggrs))
	for _, unit := range a.aggrs {
		ll := s2.LatLngFromPoint(unit.pin)
		if unit.cnt <= maxPinsPerCluster {
			for _, pin := range unit.origPins {
				r = append(r, *pin)
			}
		} else {
			r = append(r, api.MapResult{
				Latitude:  ll.Lat.Degrees(),
				Longitude: ll.Lng.Degrees(),
				Count:     unit.cnt,
			})
		}
	}
	return r
}

func (a *Aggregator) computeCentroid(pCell s2.CellID, chAggrs []*aggrUnit) s2.Point {
	fChPins := make([]s2.Point, 0)
	maxWeight := int64(0)
	for _, aggr := range chAggrs {
		if maxWeight < aggr.cnt {
			maxWeight = aggr.cnt
		}
	}
	// Children far lighter than the heaviest sibling don't pull the pin.
	for _, aggr := range chAggrs {
		if maxWeight/aggr.cnt < weightDiffThreshold {
			fChPins = append(fChPins, aggr.pin)
		}
	}
	switch len(fChPins) {
	case 1:
		return fChPins[0]
	case 2:
		return s2.PlanarCentroid(fChPins[0], fChPins[0], fChPins[1])
	case 3:
		return s2.PlanarCentroid(fChPins[0], fChPins[1], fChPins[2])
	}
	return s2.PointFromLatLng(pCell.LatLng())
}

func (a *Aggregator) aggrStep(level int) {
	if level < a.level {
		return
	}
	// Roll the aggregation units one S2 cell level up.
	nextAggrs := make(map[s2.CellID]*aggrUnit)
	for cell, unit := range a.aggrs {
		p := cell.Parent(level)
		eu, ok := nextAggrs[p]
		if !ok {
			nextAggrs[p] = &aggrUnit{
				cnt:      unit.cnt,
				origPins: unit.origPins,
			}
		} else {
			nextAggrs[p] = &aggrUnit{
				cnt:         eu.cnt + unit.cnt,
				containment: eu.containment,
			}
			if eu.cnt+unit.cnt <= maxPinsPerCluster {
				nextAggrs[p].origPins = append(eu.origPins, unit.origPins...)
			}
		}
		nextAggrs[p].containment[cell.ChildPosition(level+1)] = true
	}
	// The pin of a parent aggregation is the centroid of its children's pins.
	for pCell, pUnit := range nextAggrs {
		chAggrs := make([]*aggrUnit, 0)
		for i, v := range pUnit.containment {
			if v {
				chCell := pCell.Children()[i]
				if chAggr, ok := a.aggrs[chCell]; ok {
					chAggrs = append(chAggrs, chAggr)
				}
			}
		}
		pUnit.pin = a.computeCentroid(pCell, chAggrs)
	}
	a.aggrs = nextAggrs
	a.aggrStep(level - 1)
}

func (a *Aggregator) aggregate() {
	for cell, pts := range a.points {
		a.aggrs[cell] = &aggrUnit{
			cnt:         int64(len(pts)),
			containment: [4]bool{true, true, true, true},
			pin:         s2.PointFromLatLng(cell.LatLng()),
		}
		if len(pts) <= maxPinsPerCluster {
			a.aggrs[cell].origPins = pts
		}
	}
	a.aggrStep(maxLevel - 1)
}
