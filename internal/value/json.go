package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Parse 把 JSON 文本解析为 Value（保留键顺序与数字字面量）。
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("value: JSON 之后存在多余内容")
	}
	return v, nil
}

// MustParse 用于测试与常量 fixture；解析失败直接 panic。
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := Value{kind: KindMapping, m: map[string]Value{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: 非法的对象键 %v", kt)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				if _, dup := out.m[key]; !dup {
					out.keys = append(out.keys, key)
				}
				out.m[key] = child
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return out, nil
		case '[':
			out := Value{kind: KindSequence, seq: []Value{}}
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				out.seq = append(out.seq, child)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return out, nil
		default:
			return Value{}, fmt.Errorf("value: 意外的分隔符 %q", t)
		}
	case string:
		return Value{kind: KindString, str: t}, nil
	case json.Number:
		return Value{kind: KindNumber, num: t.String()}, nil
	case bool:
		return Value{kind: KindBool, b: t}, nil
	case nil:
		return Value{}, nil
	default:
		return Value{}, fmt.Errorf("value: 未知 token %T", tok)
	}
}

// MarshalJSON 按源键顺序输出，不转义 HTML 字符与非 ASCII 字符。
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Indent 以两个空格缩进输出 JSON。
func (v Value) Indent() (string, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.num)
	case KindString:
		return encodeString(buf, v.str)
	case KindSequence:
		buf.WriteByte('[')
		for i, e := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.m[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
