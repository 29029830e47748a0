package codec

// Version is the External Term Format version byte carried at the head of
// every encoded message.
const Version byte = 131

// Term tag bytes. Each encoded term starts with one of these, identifying
// its kind and payload layout.
const (
	TagNewFloatExt      byte = 70
	TagBitBinaryExt     byte = 77
	TagCompressed       byte = 80
	TagNewPidExt        byte = 88
	TagNewerRefExt      byte = 90
	TagSmallIntegerExt  byte = 97
	TagIntegerExt       byte = 98
	TagAtomExt          byte = 100
	TagPidExt           byte = 103
	TagSmallTupleExt    byte = 104
	TagLargeTupleExt    byte = 105
	TagNilExt           byte = 106
	TagStringExt        byte = 107
	TagListExt          byte = 108
	TagBinaryExt        byte = 109
	TagSmallBigExt      byte = 110
	TagLargeBigExt      byte = 111
	TagNewFunExt        byte = 112
	TagNewRefExt        byte = 114
	TagSmallAtomExt     byte = 115
	TagMapExt           byte = 116
	TagAtomUTF8Ext      byte = 118
	TagSmallAtomUTF8Ext byte = 119
)

// TagName returns the conventional name of a tag byte, or "unknown".
func TagName(tag byte) string {
	switch tag {
	case TagNewFloatExt:
		return "NEW_FLOAT_EXT"
	case TagBitBinaryExt:
		return "BIT_BINARY_EXT"
	case TagCompressed:
		return "COMPRESSED"
	case TagNewPidExt:
		return "NEW_PID_EXT"
	case TagNewerRefExt:
		return "NEWER_REFERENCE_EXT"
	case TagSmallIntegerExt:
		return "SMALL_INTEGER_EXT"
	case TagIntegerExt:
		return "INTEGER_EXT"
	case TagAtomExt:
		return "ATOM_EXT"
	case TagPidExt:
		return "PID_EXT"
	case TagSmallTupleExt:
		return "SMALL_TUPLE_EXT"
	case TagLargeTupleExt:
		return "LARGE_TUPLE_EXT"
	case TagNilExt:
		return "NIL_EXT"
	case TagStringExt:
		return "STRING_EXT"
	case TagListExt:
		return "LIST_EXT"
	case TagBinaryExt:
		return "BINARY_EXT"
	case TagSmallBigExt:
		return "SMALL_BIG_EXT"
	case TagLargeBigExt:
		return "LARGE_BIG_EXT"
	case TagNewFunExt:
		return "NEW_FUN_EXT"
	case TagNewRefExt:
		return "NEW_REFERENCE_EXT"
	case TagSmallAtomExt:
		return "SMALL_ATOM_EXT"
	case TagMapExt:
		return "MAP_EXT"
	case TagAtomUTF8Ext:
		return "ATOM_UTF8_EXT"
	case TagSmallAtomUTF8Ext:
		return "SMALL_ATOM_UTF8_EXT"
	default:
		return "unknown"
	}
}
