package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyColumns(t *testing.T) {
	headers := []string{
		"Timestamp",
		"100_1|Pipe|Depth|mm",
		"100_1|Pipe|Velocity|m/s",
		"Battery|V",
		"200_3|Gauge|RAINFALL|MM",
		"101_2|Outfall|Level|m",
		"102_4|Weir|Flow|l/s",
	}

	cls := ClassifyColumns(headers, 0)

	want := Classification{
		RoleTimestamp: {{Name: "Timestamp", Index: 0}},
		RoleDepth: {
			{Name: "100_1|Pipe|Depth|mm", Index: 1, LoggerID: "100", PinID: "1"},
			{Name: "101_2|Outfall|Level|m", Index: 5, LoggerID: "101", PinID: "2"},
		},
		RoleVelocity: {{Name: "100_1|Pipe|Velocity|m/s", Index: 2, LoggerID: "100", PinID: "1"}},
		RoleRainfall: {{Name: "200_3|Gauge|RAINFALL|MM", Index: 4, LoggerID: "200", PinID: "3"}},
		RoleFlow:     {{Name: "102_4|Weir|Flow|l/s", Index: 6, LoggerID: "102", PinID: "4"}},
	}
	if diff := cmp.Diff(want, cls); diff != "" {
		t.Errorf("classification mismatch (-want +got):\n%s", diff)
	}

	primary, ok := cls.Primary(RoleDepth)
	require.True(t, ok)
	assert.Equal(t, 1, primary.Index)

	_, ok = ClassifyColumns(headers[:1], 0).Primary(RoleDepth)
	assert.False(t, ok)
}

func TestClassifyColumns_Unmatched(t *testing.T) {
	cls := ClassifyColumns([]string{"Date", "Depth", "1_1|Pipe|Velocity|km/h", "x_1|Pipe|Depth|m"}, 0)
	assert.Len(t, cls, 1)
	assert.True(t, cls.Has(RoleTimestamp))
}

func TestInferIdentity(t *testing.T) {
	depthVelocity := ClassifyColumns([]string{"Timestamp", "100_1|Pipe|Depth|mm", "100_1|Pipe|Velocity|m/s"}, 0)
	depthOnly := ClassifyColumns([]string{"Timestamp", "300_2|Pipe|Level|m"}, 0)
	rain := ClassifyColumns([]string{"Timestamp", "200_3|Gauge|Rainfall|mm"}, 0)
	none := ClassifyColumns([]string{"Timestamp", "Battery"}, 0)

	tests := []struct {
		name string
		path string
		cls  Classification
		want Identity
	}{
		{
			name: "letters and digits stem",
			path: "/data/SiteA1.csv",
			cls:  depthVelocity,
			want: Identity{SiteID: "SiteA1", SiteName: "SiteA1", MonitorType: MonitorFlow},
		},
		{
			name: "digits only stem",
			path: "1042.xlsx",
			cls:  depthOnly,
			want: Identity{SiteID: "1042", SiteName: "1042", MonitorType: MonitorDepth},
		},
		{
			name: "logger id fallback",
			path: "export_final.csv",
			cls:  rain,
			want: Identity{SiteID: "200", SiteName: "200", MonitorType: MonitorRainfall},
		},
		{
			name: "stem hint beats columns",
			path: "north_DM_03.csv",
			cls:  depthVelocity,
			want: Identity{SiteID: "100", SiteName: "100", MonitorType: MonitorDepth},
		},
		{
			name: "rain gauge hint",
			path: "RG12.csv",
			cls:  none,
			want: Identity{SiteID: "RG12", SiteName: "RG12", MonitorType: MonitorRainfall},
		},
		{
			name: "flow column alone",
			path: "export.csv",
			cls:  ClassifyColumns([]string{"Timestamp", "7_1|Weir|Flow|m3/s"}, 0),
			want: Identity{SiteID: "7", SiteName: "7", MonitorType: MonitorFlow},
		},
		{
			name: "directory names ignored",
			path: "/mnt/rainfall/export.csv",
			cls:  none,
			want: Identity{SiteID: Unknown, SiteName: Unknown, MonitorType: MonitorUnknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferIdentity(tt.path, tt.cls))
		})
	}
}

func TestMonitorTypeExtension(t *testing.T) {
	assert.Equal(t, ".fdv", MonitorFlow.Extension())
	assert.Equal(t, ".fdv", MonitorDepth.Extension())
	assert.Equal(t, ".r", MonitorRainfall.Extension())
	assert.Empty(t, MonitorUnknown.Extension())
}
