package classfile

import "strings"

// AccessFlags is the access_flags bit set of a class, field or method.
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // class
	AccSynchronized AccessFlags = 0x0020 // method
	AccVolatile     AccessFlags = 0x0040 // field
	AccBridge       AccessFlags = 0x0040 // method
	AccTransient    AccessFlags = 0x0080 // field
	AccVarargs      AccessFlags = 0x0080 // method
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// Target selects which meaning overloaded flag bits take.
type Target int

const (
	TargetClass Target = iota
	TargetField
	TargetMethod
)

type flagName struct {
	name string
	flag AccessFlags
}

var flagNames = map[Target][]flagName{
	TargetClass: {
		{"public", AccPublic}, {"final", AccFinal}, {"super", AccSuper},
		{"interface", AccInterface}, {"abstract", AccAbstract}, {"synthetic", AccSynthetic},
		{"annotation", AccAnnotation}, {"enum", AccEnum}, {"module", AccModule},
	},
	TargetField: {
		{"public", AccPublic}, {"private", AccPrivate}, {"protected", AccProtected},
		{"static", AccStatic}, {"final", AccFinal}, {"volatile", AccVolatile},
		{"transient", AccTransient}, {"synthetic", AccSynthetic}, {"enum", AccEnum},
	},
	TargetMethod: {
		{"public", AccPublic}, {"private", AccPrivate}, {"protected", AccProtected},
		{"static", AccStatic}, {"final", AccFinal}, {"synchronized", AccSynchronized},
		{"bridge", AccBridge}, {"varargs", AccVarargs}, {"native", AccNative},
		{"abstract", AccAbstract}, {"strict", AccStrict}, {"synthetic", AccSynthetic},
	},
}

// Has reports whether every bit in f is set.
func (a AccessFlags) Has(f AccessFlags) bool {
	return a&f == f
}

// Strings returns the flag names set in a for the given target.
func (a AccessFlags) Strings(target Target) []string {
	var out []string
	for _, fn := range flagNames[target] {
		if a.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

// Format joins Strings with spaces.
func (a AccessFlags) Format(target Target) string {
	return strings.Join(a.Strings(target), " ")
}
