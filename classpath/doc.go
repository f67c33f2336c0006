// Package classpath locates class files for the compiler.
//
// A ClassPath is an ordered list of jar archives and directories. Lookups
// try each entry in turn and the first entry holding the class wins, the
// same rule the JVM applies. Archives are opened lazily on first use.
//
// Large class paths can attach an Index, a small sqlite database that
// remembers which archives declare which classes. Each archive is keyed by
// a BLAKE2b fingerprint of its contents, so a rebuilt jar is rescanned while
// an unchanged one is skipped:
//
//	idx, err := classpath.OpenIndex(".jaot/index.db")
//	cp := classpath.New("app.jar", "lib/rt.jar")
//	cp.UseIndex(idx)
//	err = cp.BuildIndex()
//	rc, err := cp.Open("java/lang/Object")
package classpath
