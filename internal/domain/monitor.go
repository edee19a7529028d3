package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Unknown is the placeholder for identity fields that could not be inferred.
const Unknown = "Unknown"

// MonitorType classifies what a logger file measures.
type MonitorType string

const (
	MonitorFlow     MonitorType = "Flow"
	MonitorDepth    MonitorType = "Depth"
	MonitorRainfall MonitorType = "Rainfall"
	MonitorUnknown  MonitorType = Unknown
)

// Extension returns the output file extension for the monitor type, or "" when
// the type has no encoder.
func (m MonitorType) Extension() string {
	switch m {
	case MonitorFlow, MonitorDepth:
		return ".fdv"
	case MonitorRainfall:
		return ".r"
	default:
		return ""
	}
}

// Role is the part a column plays in a logger file.
type Role string

const (
	RoleTimestamp Role = "timestamp"
	RoleDepth     Role = "depth"
	RoleFlow      Role = "flow"
	RoleVelocity  Role = "velocity"
	RoleRainfall  Role = "rainfall"
)

// Roles lists every role in the order classifications are walked.
var Roles = []Role{RoleTimestamp, RoleDepth, RoleFlow, RoleVelocity, RoleRainfall}

// ColumnMatch is one column assigned to a role. LoggerID and PinID are empty
// for the timestamp column.
type ColumnMatch struct {
	Name     string
	Index    int
	LoggerID string
	PinID    string
}

// Classification maps roles to the columns that matched them, in header order.
// The first match of a role is the canonical column.
type Classification map[Role][]ColumnMatch

// Primary returns the canonical column for a role.
func (c Classification) Primary(role Role) (ColumnMatch, bool) {
	cols := c[role]
	if len(cols) == 0 {
		return ColumnMatch{}, false
	}
	return cols[0], true
}

// Has reports whether any column matched the role.
func (c Classification) Has(role Role) bool {
	return len(c[role]) > 0
}

var channelPatterns = []struct {
	role Role
	re   *regexp.Regexp
}{
	{RoleDepth, regexp.MustCompile(`(?i)(\d+)_(\d+)\|.*(Depth|Level)\|(m|mm)`)},
	{RoleFlow, regexp.MustCompile(`(?i)(\d+)_(\d+)\|.*Flow\|(l/s|m3/s)`)},
	{RoleVelocity, regexp.MustCompile(`(?i)(\d+)_(\d+)\|.*Velocity\|m/s`)},
	{RoleRainfall, regexp.MustCompile(`(?i)(\d+)_(\d+)\|.*Rainfall\|mm`)},
}

// ClassifyColumns assigns channel roles to headers. The column at tsIndex is
// recorded as the timestamp and never matched against channel patterns. A
// header can match more than one channel role.
func ClassifyColumns(headers []string, tsIndex int) Classification {
	cls := make(Classification)
	for i, h := range headers {
		if i == tsIndex {
			cls[RoleTimestamp] = append(cls[RoleTimestamp], ColumnMatch{Name: h, Index: i})
			continue
		}
		for _, p := range channelPatterns {
			m := p.re.FindStringSubmatch(h)
			if m == nil {
				continue
			}
			cls[p.role] = append(cls[p.role], ColumnMatch{
				Name:     h,
				Index:    i,
				LoggerID: m[1],
				PinID:    m[2],
			})
		}
	}
	return cls
}

// Identity names the site and monitor behind a logger file.
type Identity struct {
	SiteID      string
	SiteName    string
	MonitorType MonitorType
}

var (
	siteNameRe = regexp.MustCompile(`^([A-Za-z]+\d+)$`)
	siteIDRe   = regexp.MustCompile(`^(\d+)$`)
)

// InferIdentity derives site identity and monitor type from a file path and
// its column classification. Only the file stem is inspected, never the
// directories above it.
func InferIdentity(path string, cls Classification) Identity {
	id := Identity{SiteID: Unknown, SiteName: Unknown, MonitorType: MonitorUnknown}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if m := siteNameRe.FindStringSubmatch(stem); m != nil {
		id.SiteID, id.SiteName = m[1], m[1]
	} else if m := siteIDRe.FindStringSubmatch(stem); m != nil {
		id.SiteID = m[1]
	}

	if id.SiteID == Unknown {
		id.SiteID = firstLoggerID(cls)
	}

	id.MonitorType = monitorTypeFromName(stem)
	if id.MonitorType == MonitorUnknown {
		id.MonitorType = monitorTypeFromRoles(cls)
	}

	if id.SiteName == Unknown && id.SiteID != Unknown {
		id.SiteName = id.SiteID
	}
	return id
}

func firstLoggerID(cls Classification) string {
	for _, role := range Roles {
		for _, col := range cls[role] {
			if col.LoggerID != "" {
				return col.LoggerID
			}
		}
	}
	return Unknown
}

func monitorTypeFromName(stem string) MonitorType {
	lower := strings.ToLower(stem)
	switch {
	case strings.Contains(lower, "dm"), strings.Contains(lower, "depth"):
		return MonitorDepth
	case strings.Contains(lower, "fm"), strings.Contains(lower, "flow"):
		return MonitorFlow
	case strings.Contains(lower, "rg"), strings.Contains(lower, "rain"):
		return MonitorRainfall
	default:
		return MonitorUnknown
	}
}

func monitorTypeFromRoles(cls Classification) MonitorType {
	switch {
	case cls.Has(RoleRainfall):
		return MonitorRainfall
	case cls.Has(RoleFlow), cls.Has(RoleDepth) && cls.Has(RoleVelocity):
		return MonitorFlow
	case cls.Has(RoleDepth):
		return MonitorDepth
	default:
		return MonitorUnknown
	}
}
