package jaot

import "io"

// ClassProvider opens the class file for a binary class name such as
// java/lang/Object. Implementations return an error of kind
// errors.KindNotFound when no such class exists.
type ClassProvider interface {
	Open(name string) (io.ReadCloser, error)
}

// ProviderFunc adapts a function to ClassProvider.
type ProviderFunc func(name string) (io.ReadCloser, error)

// Open calls f(name).
func (f ProviderFunc) Open(name string) (io.ReadCloser, error) {
	return f(name)
}
