// Package descriptor parses JVM field and method type descriptors.
//
// A field descriptor is one primitive letter, L<binary-name>; or one or more
// leading [ followed by a field descriptor. A method descriptor is
// (<field descriptors>) followed by a field descriptor or V.
//
//	fd, err := descriptor.ParseField("[[I")
//	fd.Type              // Array
//	fd.Underlying().Type // Array
//	fd.Element().Type    // Int
//
// Malformed descriptors are fatal format errors; they come from a trusted
// binary source, so a bad one means the class file is corrupt.
package descriptor
