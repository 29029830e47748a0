package term

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Repr renders a term in Erlang shell syntax. It is intended for logging and
// CLI output, not for feeding back into an Erlang parser.
func Repr(t Term) string {
	var sb strings.Builder
	writeRepr(&sb, t)
	return sb.String()
}

func writeRepr(sb *strings.Builder, t Term) {
	switch v := t.(type) {
	case nil:
		sb.WriteString("undefined")
	case bool:
		if v {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case *big.Int:
		sb.WriteString(v.String())
	case float64:
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case Atom:
		writeAtomRepr(sb, string(v))
	case string:
		sb.WriteString(strconv.Quote(v))
	case []byte:
		writeBinaryRepr(sb, v, 8)
	case BitString:
		writeBinaryRepr(sb, v.Bytes, v.Bits)
	case List:
		writeListRepr(sb, v, nil)
	case []Term:
		writeListRepr(sb, v, nil)
	case ImproperList:
		writeListRepr(sb, v.Elements, v.Tail)
	case Tuple:
		sb.WriteByte('{')
		for i, el := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeRepr(sb, el)
		}
		sb.WriteByte('}')
	case *Map:
		sb.WriteString("#{")
		for i, p := range v.Pairs() {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeRepr(sb, p.Key)
			sb.WriteString(" => ")
			writeRepr(sb, p.Value)
		}
		sb.WriteByte('}')
	case Pid:
		fmt.Fprintf(sb, "#Pid<%s.%d.%d>", v.Node, v.ID, v.Serial)
	case Ref:
		fmt.Fprintf(sb, "#Ref<%s.%x>", v.Node, v.ID)
	case Fun:
		fmt.Fprintf(sb, "#Fun<%s.%d>", Repr(v.Module), v.Index)
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

func writeListRepr(sb *strings.Builder, elements []Term, tail Term) {
	sb.WriteByte('[')
	for i, el := range elements {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeRepr(sb, el)
	}
	if tail != nil {
		sb.WriteByte('|')
		writeRepr(sb, tail)
	}
	sb.WriteByte(']')
}

func writeBinaryRepr(sb *strings.Builder, data []byte, lastByteBits uint8) {
	sb.WriteString("<<")
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(b)))
		if i == len(data)-1 && lastByteBits < 8 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(int(lastByteBits)))
		}
	}
	sb.WriteString(">>")
}

func writeAtomRepr(sb *strings.Builder, text string) {
	if isBareAtom(text) {
		sb.WriteString(text)
		return
	}
	sb.WriteByte('\'')
	sb.WriteString(strings.ReplaceAll(text, "'", `\'`))
	sb.WriteByte('\'')
}

func isBareAtom(text string) bool {
	if len(text) == 0 {
		return false
	}
	if text[0] < 'a' || text[0] > 'z' {
		return false
	}
	for i := 1; i < len(text); i++ {
		c := text[i]
		ok := c >= 'a' && c <= 'z' ||
			c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' ||
			c == '_' || c == '@'
		if !ok {
			return false
		}
	}
	return true
}
