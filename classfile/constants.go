package classfile

import "strconv"

// Class file signature and newest supported version.
const (
	// Magic is the 4-byte class file signature.
	Magic uint32 = 0xCAFEBABE

	// MaxMajorVersion is Java 21, the newest format this decoder understands.
	MaxMajorVersion uint16 = 65
)

// Tag identifies the shape of a constant pool entry.
type Tag uint8

// Constant pool tags.
const (
	TagUTF8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldRef           Tag = 9
	TagMethodRef          Tag = 10
	TagInterfaceMethodRef Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

var tagNames = map[Tag]string{
	TagUTF8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldRef:           "Fieldref",
	TagMethodRef:          "Methodref",
	TagInterfaceMethodRef: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// Known attribute names.
const (
	AttrCode               = "Code"
	AttrLineNumberTable    = "LineNumberTable"
	AttrSourceFile         = "SourceFile"
	AttrConstantValue      = "ConstantValue"
	AttrLocalVariableTable = "LocalVariableTable"
	AttrExceptions         = "Exceptions"
	AttrSignature          = "Signature"
	AttrInnerClasses       = "InnerClasses"
	AttrBootstrapMethods   = "BootstrapMethods"
	AttrDeprecated         = "Deprecated"
	AttrSynthetic          = "Synthetic"
)

// Method handle reference kinds.
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)
