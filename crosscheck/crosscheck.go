// Package crosscheck compares a decoded class with the reading of an
// independent class file parser. A disagreement points at a decoder bug on
// one side or the other.
package crosscheck

import (
	"bytes"
	"fmt"
	"strconv"

	parser "github.com/wreulicke/classfile-parser"

	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/errors"
)

// Compare reparses data and reports the first place where the reference
// parser and cf disagree. cf must have been decoded from data.
func Compare(data []byte, cf *classfile.ClassInfo) error {
	if cf == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, "class")
	}
	name, err := cf.Name()
	if err != nil {
		return err
	}

	ref, err := parser.New(bytes.NewReader(data)).Parse()
	if err != nil {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Class(name).
			Cause(err).
			Detail("reference parser rejected the class").
			Build()
	}

	c := &comparison{class: name}
	c.check(int(cf.MajorVersion), int(ref.MajorVersion), "major_version")
	c.check(int(cf.MinorVersion), int(ref.MinorVersion), "minor_version")
	c.check(int(cf.AccessFlags), int(ref.AccessFlags), "access_flags")

	refName, err := ref.ThisClassName()
	c.checkErr(err, "this_class")
	c.check(name, refName, "this_class")

	super, err := cf.SuperName()
	if err != nil {
		return err
	}
	refSuper := ""
	if ref.SuperClass != 0 {
		refSuper, err = ref.SuperClassName()
		c.checkErr(err, "super_class")
	}
	c.check(super, refSuper, "super_class")

	ifaces, err := cf.InterfaceNames()
	if err != nil {
		return err
	}
	c.check(len(ifaces), len(ref.Interfaces), "interfaces")
	for i := 0; c.err == nil && i < len(ifaces); i++ {
		n, err := ref.ConstantPool.GetClassName(ref.Interfaces[i])
		c.checkErr(err, "interfaces", strconv.Itoa(i))
		c.check(ifaces[i], n, "interfaces", strconv.Itoa(i))
	}

	c.check(len(cf.Fields), len(ref.Fields), "fields")
	for i := 0; c.err == nil && i < len(cf.Fields); i++ {
		f, rf := &cf.Fields[i], ref.Fields[i]
		rn, err := rf.Name(ref.ConstantPool)
		c.checkErr(err, "fields", strconv.Itoa(i))
		rd, err := rf.Descriptor(ref.ConstantPool)
		c.checkErr(err, "fields", strconv.Itoa(i))
		c.member(cf.ConstantPool, f, "fields", i, rn, rd, int(rf.AccessFlags))
	}

	c.check(len(cf.Methods), len(ref.Methods), "methods")
	for i := 0; c.err == nil && i < len(cf.Methods); i++ {
		m, rm := &cf.Methods[i], ref.Methods[i]
		rn, err := rm.Name(ref.ConstantPool)
		c.checkErr(err, "methods", strconv.Itoa(i))
		rd, err := rm.Descriptor(ref.ConstantPool)
		c.checkErr(err, "methods", strconv.Itoa(i))
		c.member(cf.ConstantPool, m, "methods", i, rn, rd, int(rm.AccessFlags))

		refCode := -1
		if code := rm.Code(); code != nil {
			refCode = len(code.Codes)
		}
		c.check(codeLength(cf.ConstantPool, m), refCode, "methods", strconv.Itoa(i), "code_length")
	}
	return c.err
}

func codeLength(p *classfile.ConstantPool, m *classfile.MethodInfo) int {
	a, ok := classfile.FindAttribute(p, m.Attributes, classfile.AttrCode)
	if !ok {
		return -1
	}
	code, err := classfile.ParseCode(p, a)
	if err != nil {
		return -1
	}
	return len(code.Code)
}

// comparison records the first disagreement and ignores later checks.
type comparison struct {
	err   error
	class string
}

func (c *comparison) member(p *classfile.ConstantPool, m *classfile.MemberInfo, section string, i int, name, desc string, access int) {
	n, err := m.Name(p)
	c.checkErr(err, section, strconv.Itoa(i))
	c.check(n, name, section, strconv.Itoa(i), "name")
	d, err := m.Descriptor(p)
	c.checkErr(err, section, strconv.Itoa(i))
	c.check(d, desc, section, strconv.Itoa(i), "descriptor")
	c.check(int(m.AccessFlags), access, section, strconv.Itoa(i), "access_flags")
}

func (c *comparison) check(ours, theirs any, path ...string) {
	if c.err != nil || ours == theirs {
		return
	}
	c.err = errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Class(c.class).
		Path(path...).
		Value(theirs).
		Detail("decoded %s, reference parser read %s", show(ours), show(theirs)).
		Build()
}

func (c *comparison) checkErr(err error, path ...string) {
	if c.err != nil || err == nil {
		return
	}
	c.err = errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Class(c.class).
		Path(path...).
		Cause(err).
		Detail("reference parser cannot read the entry").
		Build()
}

func show(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
