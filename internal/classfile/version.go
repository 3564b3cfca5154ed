// Version detection for class file format variations.
package classfile

import "strconv"

// VersionProfile holds format parameters that differ across class file versions.
type VersionProfile struct {
	Major         uint16
	Java          string // e.g. "1.8", "21", "" if unknown
	Supported     bool   // true if the pipeline can parse and rewrite this version
	StackMaps     bool   // ≥50: methods carry StackMapTable for the type-checking verifier
	RequireFrames bool   // ≥51: the type checker is mandatory, no fallback to inference
	AllowJSR      bool   // ≤50: jsr/jsr_w/ret are legal
	Dynamic       bool   // ≥55: CONSTANT_Dynamic
}

const (
	minMajor = 45
	maxMajor = 69 // Java 25
)

// Profile returns the format profile for a class file major version.
func Profile(major uint16) VersionProfile {
	p := VersionProfile{
		Major:         major,
		Supported:     major >= minMajor && major <= maxMajor,
		StackMaps:     major >= 50,
		RequireFrames: major >= 51,
		AllowJSR:      major < 51,
		Dynamic:       major >= 55,
	}
	switch {
	case major < minMajor:
	case major <= 52:
		p.Java = "1." + strconv.Itoa(int(major)-44)
	default:
		p.Java = strconv.Itoa(int(major) - 44)
	}
	return p
}
