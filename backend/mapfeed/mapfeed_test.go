package mapfeed

import (
	"fmt"
	"testing"

	"civicfix/backend/server/api"
)

type val struct {
	lat float64
	lon float64
}

var clusterVals = []val{
	{47.31462939002329, 8.541340828180283},
	{47.31462939002329, 8.541340828180283},
	{47.31462939002329, 8.541340828180283},
	{47.31462939002329, 8.541340828180283},
	{47.33001916923687, 8.526018592128164},
	{47.33001916923687, 8.526018592128164},
	{47.33001916923687, 8.526018592128164},
	{47.32553912731774, 8.541040883060727},
	{47.342540664005575, 8.524205901684924},
	{47.33262304063603, 8.5200006810743},
	{47.3162507337501, 8.5439348359329},
	{47.31736001922385, 8.517462177871218},
	{47.38400103557999, 8.493601108716156},
	{47.39907725236555, 8.612192557531866},
}

func addAll(a *Aggregator, vals []val) {
	for i, v := range vals {
		a.AddPin(api.MapResult{
			Latitude:  v.lat,
			Longitude: v.lon,
			Count:     1,
			ReportID:  fmt.Sprintf("r%d", i),
			Status:    api.StatusPending,
		})
	}
}

func TestAggregatorLargeViewport(t *testing.T) {
	// Zoomed far out: the dense group collapses into one cluster, the
	// distant pin stays on its own.
	a := NewAggregator(&api.ViewPort{
		LatMin: 42.691869916020075,
		LonMin: -4.318880552071925,
		LatMax: 52.80861391899353,
		LonMax: 11.800429267075046,
	}, &api.Point{Lat: 47.7502419175, Lon: 3.7407743575})

	addAll(&a, clusterVals)
	a.AddPin(api.MapResult{
		Latitude:  48.95821274837425,
		Longitude: -0.5711499548796795,
		Count:     1,
		ReportID:  "far",
		Status:    api.StatusResolved,
	})

	r := a.ToArray()
	if len(r) != 2 {
		t.Fatalf("got %d results, want 2 (cluster + lone pin): %v", len(r), r)
	}
	var cluster, lone *api.MapResult
	for i := range r {
		if r[i].Count > 1 {
			cluster = &r[i]
		} else {
			lone = &r[i]
		}
	}
	if cluster == nil || cluster.Count != 14 || cluster.ReportID != "" {
		t.Errorf("cluster = %+v, want count 14 with no report id", cluster)
	}
	if lone == nil || lone.ReportID != "far" || lone.Status != api.StatusResolved {
		t.Errorf("lone pin = %+v, want the distant report preserved", lone)
	}
}

func TestAggregatorSmallViewport(t *testing.T) {
	// Zoomed in: every pin survives individually.
	a := NewAggregator(&api.ViewPort{
		LatMin: 47.00155041602738,
		LonMin: 7.875126253510233,
		LatMax: 47.73257160018401,
		LonMax: 8.979175225820796,
	}, &api.Point{Lat: 47.3670610081, Lon: 8.42715073967})

	addAll(&a, clusterVals)

	r := a.ToArray()
	if len(r) != len(clusterVals) {
		t.Fatalf("got %d results, want %d individual pins", len(r), len(clusterVals))
	}
	seen := map[string]bool{}
	for _, v := range r {
		if v.Count != 1 {
			t.Errorf("pin %+v aggregated in a zoomed-in viewport", v)
		}
		seen[v.ReportID] = true
	}
	for i := range clusterVals {
		if !seen[fmt.Sprintf("r%d", i)] {
			t.Errorf("pin r%d missing from result", i)
		}
	}
}
