// Package classfile decodes and encodes JVM class files.
//
// Decoding is bit-exact: every field of the binary format is kept, attribute
// payloads stay raw until a typed parser is asked for them, and Encode
// reproduces the original bytes.
//
//	c, err := classfile.Decode(data)
//	name, err := c.Name()
//	for _, m := range c.Methods {
//		if a, ok := classfile.FindAttribute(c.ConstantPool, m.Attributes, classfile.AttrCode); ok {
//			code, err := classfile.ParseCode(c.ConstantPool, a)
//			...
//		}
//	}
//
// The constant pool is 1-indexed. Long and Double entries take two slots and
// the second slot stays nil.
//
// Errors match the sentinels with errors.Is: ErrNotClassFile for a bad magic
// number, ErrUnsupportedVersion for versions above MaxMajorVersion,
// ErrUnknownTag for an unrecognised constant tag and
// ErrMalformed for truncated or inconsistent data.
//
// PoolBuilder and ClassBuilder assemble classes in memory; the tests across
// this module use them instead of binary fixtures.
package classfile
