package models

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the binary note record. Never renumber.
const (
	fieldAbsolutePath protowire.Number = 1
	fieldRelativePath protowire.Number = 2
	fieldTitle        protowire.Number = 3
	fieldCreated      protowire.Number = 4
	fieldModified     protowire.Number = 5
	fieldTag          protowire.Number = 6
)

// Marshal encodes n in protobuf wire format. Tags are written sorted so equal
// records always produce equal bytes.
func (n Note) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, fieldAbsolutePath, n.AbsolutePath)
	b = appendString(b, fieldRelativePath, n.RelativePath)
	b = appendString(b, fieldTitle, n.Title)
	b = appendString(b, fieldCreated, n.Created)
	b = appendString(b, fieldModified, n.Modified)
	for _, t := range n.Tags.Sorted() {
		b = appendString(b, fieldTag, t)
	}
	return b, nil
}

// Unmarshal decodes a record produced by Marshal. Unknown fields are skipped.
func Unmarshal(data []byte) (Note, error) {
	n := Note{Tags: TagSet{}}
	for len(data) > 0 {
		num, typ, l := protowire.ConsumeTag(data)
		if l < 0 {
			return Note{}, fmt.Errorf("models: decode tag: %w", protowire.ParseError(l))
		}
		data = data[l:]

		if typ != protowire.BytesType {
			l = protowire.ConsumeFieldValue(num, typ, data)
			if l < 0 {
				return Note{}, fmt.Errorf("models: skip field %d: %w", num, protowire.ParseError(l))
			}
			data = data[l:]
			continue
		}

		v, l := protowire.ConsumeString(data)
		if l < 0 {
			return Note{}, fmt.Errorf("models: decode field %d: %w", num, protowire.ParseError(l))
		}
		data = data[l:]

		switch num {
		case fieldAbsolutePath:
			n.AbsolutePath = v
		case fieldRelativePath:
			n.RelativePath = v
		case fieldTitle:
			n.Title = v
		case fieldCreated:
			n.Created = v
		case fieldModified:
			n.Modified = v
		case fieldTag:
			n.Tags.Add(v)
		}
	}
	if n.AbsolutePath == "" {
		return Note{}, fmt.Errorf("models: decode: record has no absolute path")
	}
	return n, nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}
