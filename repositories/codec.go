package repositories

import (
	"chat-broadcaster/domain"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the stored message record.
// They must never be renumbered, only appended.
const (
	fieldID        protowire.Number = 1
	fieldUserID    protowire.Number = 2
	fieldUserName  protowire.Number = 3
	fieldText      protowire.Number = 4
	fieldCreatedAt protowire.Number = 5
)

func encodeMessage(m domain.ChatMessage) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.ID))
	b = protowire.AppendTag(b, fieldUserID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.UserID))
	b = protowire.AppendTag(b, fieldUserName, protowire.BytesType)
	b = protowire.AppendString(b, m.UserName)
	b = protowire.AppendTag(b, fieldText, protowire.BytesType)
	b = protowire.AppendString(b, m.Text)
	b = protowire.AppendTag(b, fieldCreatedAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.CreatedAt.UnixNano()))
	return b
}

// DecodeMessage skips unknown fields so older binaries can read newer records.
func DecodeMessage(b []byte) (domain.ChatMessage, error) {
	var m domain.ChatMessage
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.ChatMessage{}, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && num != fieldUserName && num != fieldText:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.ChatMessage{}, protowire.ParseError(n)
			}
			b = b[n:]
			switch num {
			case fieldID:
				m.ID = int64(v)
			case fieldUserID:
				m.UserID = domain.UserID(int64(v))
			case fieldCreatedAt:
				m.CreatedAt = time.Unix(0, int64(v)).UTC()
			}
		case typ == protowire.BytesType && (num == fieldUserName || num == fieldText):
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.ChatMessage{}, protowire.ParseError(n)
			}
			b = b[n:]
			if num == fieldUserName {
				m.UserName = v
			} else {
				m.Text = v
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.ChatMessage{}, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	if m.ID == 0 {
		return domain.ChatMessage{}, fmt.Errorf("message record without id")
	}
	return m, nil
}
