// Package resolve replaces constant pool indices with the values they
// name.
//
// A resolved Class refers to other classes only by name, so classes can be
// resolved one at a time in any order. Attributes are re-parsed into typed
// records; an attribute the resolver does not know is an error unless it
// is listed in Options.IgnoreAttributes.
//
//	r := resolve.New(resolve.Options{})
//	cls, err := r.Class(info)
//	for _, m := range cls.Methods {
//		if code, ok := m.Code(); ok {
//			for _, in := range code.Instructions {
//				fmt.Println(in.Offset, in.Opcode, in.Ref)
//			}
//		}
//	}
package resolve
