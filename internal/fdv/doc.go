// Package fdv writes and reads the fixed-width ASCII FDV format consumed by
// flow survey analysis software.
//
// A file is a block of "**" declaration lines, a constants section between
// "*CSTART" and "*CEND", the data records and a closing "*END":
//
//	**IDENTIFIER:            1,SITEA1
//	...
//	*CSTART
//	  0.300 UNKNOWN
//	202403011000 202403011010   2
//	*CEND
//	    0  120 0.50    0  125 0.52 ...
//
// The line before "*CEND" carries the start and end of the record as
// YYYYMMDDHHMM and the sampling interval in whole minutes. Records hold five
// samples per line. Flow files encode each sample as three 5-character fields
// (flow L/s, depth mm, velocity m/s); rainfall files encode one 15-character
// intensity field.
package fdv
