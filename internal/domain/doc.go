// Package domain models field-logger monitoring data and the identity of the
// monitor that produced it.
//
// # Logger Files
//
// Loggers export one row per sample with a timestamp column and one column per
// channel. Channel headers follow a pipe-delimited convention:
//
//	"<logger>_<pin>|<label>|<quantity>|<unit>"  →  e.g. "100_1|Pipe|Depth|mm"
//
// The logger and pin numbers identify the physical instrument. The label is
// free text. Quantity and unit decide the channel role:
//
//	Depth:    "Depth" or "Level", in m or mm
//	Flow:     "Flow", in l/s or m3/s
//	Velocity: "Velocity", in m/s
//	Rainfall: "Rainfall", in mm
//
// Matching is case-insensitive. Columns that match nothing are carried through
// untouched but play no part in identity or encoding.
//
// # Monitor Identity
//
// Site identity comes from the file stem when it is a single token:
//
//	"SiteA1.csv"  →  site id and name "SiteA1"
//	"1042.xlsx"   →  site id "1042", name defaults to the id
//
// Otherwise the first logger number captured from a classified column stands
// in as the site id. Monitor type is read from stem substrings first ("dm" or
// "depth", "fm" or "flow", "rg" or "rain") and then from the roles present:
// any rainfall column means Rainfall, flow or depth plus velocity means Flow,
// depth alone means Depth. Anything left undecided is reported as "Unknown".
package domain
