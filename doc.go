// Package jaot is the front end of an ahead-of-time compiler from JVM class
// files to C++ source.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jaot/                Root package with the ClassProvider interface
//	├── classfile/       Class file decoding, encoding and validation
//	├── descriptor/      Field and method descriptor parsing
//	├── bytecode/        Instruction decoding and encoding
//	├── resolve/         Constant pool resolution into symbolic records
//	├── graph/           Dependency collection and topological ordering
//	├── codegen/         C++ source tree, emitter and syntax verification
//	├── classpath/       Jar archives, directories and the class index
//	├── compiler/        The pipeline tying the stages together
//	├── config/          Configuration loading
//	├── crosscheck/      Independent decoder comparison
//	└── errors/          Structured error types
//
// # Quick Start
//
// Compile a main class and everything it reaches:
//
//	cp := classpath.New("app.jar", "rt.jar")
//	defer cp.Close()
//
//	c := compiler.NewContext(cp, compiler.Options{})
//	res, err := c.Compile(context.Background(), "com/example/Main")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(res.Source)
package jaot
