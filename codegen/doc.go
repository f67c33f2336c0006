// Package codegen builds and renders the C++ source tree for resolved
// classes.
//
// The tree is made of Nodes. Structural nodes (File, Namespace, Class,
// Section, Function, Block) embed Tree and wrap their children in the
// right delimiters; leaf nodes (Include, ForwardDecl, Field, Literal,
// Identifier, TypeRef, Comment, Raw, Statement) render their own text.
// Invalid construction, such as a nil child or a type that is both a
// pointer and a const pointer, fails when the node is built, never while
// rendering.
//
// Emitter turns a topologically ordered list of classes into a File:
// a small prelude, forward declarations of every class mentioned, then one
// definition per class. Java types map to fixed width integers, char16_t,
// jaot::JArray<T>* for arrays and pointers for classes.
//
// Verify parses rendered output with tree-sitter and needs CGO.
package codegen
