package codegen

import (
	"fmt"
	"strings"
)

var cppKeywords = map[string]bool{}

func init() {
	for _, k := range strings.Fields(`alignas alignof and and_eq asm auto bitand bitor bool break case
		catch char char8_t char16_t char32_t class compl concept const consteval constexpr constinit
		const_cast continue co_await co_return co_yield decltype default delete do double
		dynamic_cast else enum explicit export extern false float for friend goto if inline int
		long mutable namespace new noexcept not not_eq nullptr operator or or_eq private
		protected public register reinterpret_cast requires return short signed sizeof static
		static_assert static_cast struct switch template this thread_local throw true try
		typedef typeid typename union unsigned using virtual void volatile wchar_t while xor
		xor_eq NULL INFINITY NAN jaot`) {
		cppKeywords[k] = true
	}
}

// Mangle turns a Java name into a valid C++ identifier. Distinct names
// always mangle to distinct identifiers: every underscore the mangling adds is
// followed by a marker, so an underscore from the input is doubled, $ becomes
// _S and any other character outside [A-Za-z0-9] becomes _uXXXX (or
// _UXXXXXXXX). <init> and <clinit> become _init and _clinit, a leading digit
// gets a _ prefix and keywords get a trailing underscore.
func Mangle(name string) string {
	return unreserved(escape(name))
}

// escape applies the character mapping of Mangle without the keyword check,
// so callers can append a suffix before deciding whether the result is
// reserved.
func escape(name string) string {
	switch name {
	case "<init>":
		return "_init"
	case "<clinit>":
		return "_clinit"
	case "":
		return "_"
	}

	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		case r == '_':
			b.WriteString("__")
		case r == '$':
			b.WriteString("_S")
		case r <= 0xFFFF:
			fmt.Fprintf(&b, "_u%04x", r)
		default:
			fmt.Fprintf(&b, "_U%08x", r)
		}
	}
	return b.String()
}

func unreserved(s string) string {
	if cppKeywords[s] {
		return s + "_"
	}
	return s
}

// SplitClassName splits a binary class name such as java/lang/String into
// its package and simple name.
func SplitClassName(name string) (pkg, simple string) {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// QualifiedName returns the fully scoped C++ name of a class, for example
// ::java::lang::String.
func QualifiedName(name string) string {
	pkg, simple := SplitClassName(name)
	var b strings.Builder
	if pkg != "" {
		for _, part := range strings.Split(pkg, "/") {
			b.WriteString("::")
			b.WriteString(Mangle(part))
		}
	}
	b.WriteString("::")
	b.WriteString(Mangle(simple))
	return b.String()
}
