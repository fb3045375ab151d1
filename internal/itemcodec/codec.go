// Package itemcodec сериализует деревья предметов в little-endian формат
// с тегированным блоком атрибутов.
//
// Формат предмета:
//
//	int32  item id
//	uint16 count / sub-type
//	{ byte tag, value }*  tagEnd
//	uint16 число вложенных предметов + предметы (только для контейнеров)
//
// Состояние decay не сохраняется: им владеет scheduler.
package itemcodec

import (
	"errors"
	"fmt"

	"github.com/udisondev/itemcore/internal/model"
)

// FormatVersion — версия формата в первом байте Marshal*.
const FormatVersion byte = 1

// MaxDepth ограничивает вложенность контейнеров при декодировании.
const MaxDepth = 64

const (
	tagEnd    byte = 0
	tagCustom byte = 0x80
)

const (
	customInt  byte = 0
	customText byte = 1
)

var (
	// ErrUnknownAttribute — тег атрибута не входит в известный набор.
	ErrUnknownAttribute = errors.New("unknown item attribute")
	// ErrUnsupportedVersion — данные записаны другой версией формата.
	ErrUnsupportedVersion = errors.New("unsupported item format version")
	// ErrTrailingData — после декодирования остались лишние байты.
	ErrTrailingData = errors.New("trailing data after items")
)

// Factory создаёт экземпляры предметов (data.Catalog или transfer.Engine).
type Factory interface {
	CreateItem(itemID int32, count uint16) (*model.Item, error)
}

// MarshalItem кодирует предмет вместе с содержимым.
func MarshalItem(item *model.Item) []byte {
	return MarshalItems([]*model.Item{item})
}

// MarshalItems кодирует список предметов (содержимое holder'а).
func MarshalItems(items []*model.Item) []byte {
	w := getWriter()
	defer w.put()

	_ = w.WriteByte(FormatVersion)
	w.WriteUint16(uint16(len(items)))
	for _, item := range items {
		EncodeItem(w, item)
	}
	return append([]byte(nil), w.Bytes()...)
}

// EncodeItem пишет предмет в w.
func EncodeItem(w *Writer, item *model.Item) {
	w.WriteInt(item.ItemID())
	w.WriteUint16(uint16(item.SubType()))
	encodeAttributes(w, item.Attributes())

	if c := item.Container(); c != nil {
		items := c.Items()
		w.WriteUint16(uint16(len(items)))
		for _, child := range items {
			EncodeItem(w, child)
		}
	}
}

func encodeAttributes(w *Writer, a *model.Attributes) {
	for _, k := range a.IntKeys() {
		if k == model.AttrDecayState {
			continue
		}
		v, _ := a.Int(k)
		_ = w.WriteByte(byte(k))
		w.WriteLong(v)
	}
	for _, k := range a.StrKeys() {
		v, _ := a.Str(k)
		_ = w.WriteByte(byte(k))
		w.WriteString(v)
	}
	for _, name := range a.CustomKeys() {
		v, _ := a.Custom(name)
		_ = w.WriteByte(tagCustom)
		w.WriteString(name)
		if v.IsText {
			_ = w.WriteByte(customText)
			w.WriteString(v.Str)
		} else {
			_ = w.WriteByte(customInt)
			w.WriteLong(v.Int)
		}
	}
	_ = w.WriteByte(tagEnd)
}

// UnmarshalItems декодирует результат MarshalItems.
// Предметы создаются через f, вложенные предметы уже лежат в своих контейнерах.
func UnmarshalItems(f Factory, data []byte) ([]*model.Item, error) {
	r := NewReader(data)
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading format version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	n, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading item count: %w", err)
	}
	items := make([]*model.Item, 0, n)
	for i := range int(n) {
		item, err := DecodeItem(f, r)
		if err != nil {
			return nil, fmt.Errorf("decoding item %d: %w", i, err)
		}
		items = append(items, item)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Remaining())
	}
	return items, nil
}

// UnmarshalItem декодирует результат MarshalItem.
func UnmarshalItem(f Factory, data []byte) (*model.Item, error) {
	items, err := UnmarshalItems(f, data)
	if err != nil {
		return nil, err
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("expected one item, got %d", len(items))
	}
	return items[0], nil
}

// DecodeItem читает один предмет из r.
func DecodeItem(f Factory, r *Reader) (*model.Item, error) {
	return decodeItem(f, r, 0)
}

func decodeItem(f Factory, r *Reader, depth int) (*model.Item, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("container nesting exceeds %d", MaxDepth)
	}

	itemID, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("reading item id: %w", err)
	}
	count, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading count of item %d: %w", itemID, err)
	}

	item, err := f.CreateItem(itemID, count)
	if err != nil {
		return nil, err
	}

	attrs, err := decodeAttributes(r)
	if err != nil {
		return nil, fmt.Errorf("item %d attributes: %w", itemID, err)
	}
	if s := item.DecayState(); s != model.DecayOff {
		attrs.SetInt(model.AttrDecayState, int64(s))
	}
	item.SetAttributes(attrs)

	c := item.Container()
	if c == nil {
		return item, nil
	}
	n, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading contents of item %d: %w", itemID, err)
	}
	for range int(n) {
		child, err := decodeItem(f, r, depth+1)
		if err != nil {
			return nil, err
		}
		c.AddItemBack(child)
	}
	return item, nil
}

func decodeAttributes(r *Reader) (*model.Attributes, error) {
	attrs := &model.Attributes{}
	for {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading attribute tag: %w", err)
		}

		switch key := model.AttrKey(tag); {
		case tag == tagEnd:
			return attrs, nil

		case tag == tagCustom:
			name, err := r.ReadString()
			if err != nil {
				return nil, fmt.Errorf("reading custom attribute name: %w", err)
			}
			v, err := decodeCustom(r)
			if err != nil {
				return nil, fmt.Errorf("custom attribute %q: %w", name, err)
			}
			attrs.SetCustom(name, v)

		case !key.IsKnown() || key == model.AttrDecayState:
			return nil, fmt.Errorf("%w: tag %d at offset %d", ErrUnknownAttribute, tag, r.Position()-1)

		case key.IsString():
			v, err := r.ReadString()
			if err != nil {
				return nil, fmt.Errorf("reading attribute %d: %w", tag, err)
			}
			attrs.SetStr(key, v)

		default:
			v, err := r.ReadLong()
			if err != nil {
				return nil, fmt.Errorf("reading attribute %d: %w", tag, err)
			}
			attrs.SetInt(key, v)
		}
	}
}

func decodeCustom(r *Reader) (model.CustomValue, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return model.CustomValue{}, err
	}
	switch kind {
	case customInt:
		v, err := r.ReadLong()
		return model.CustomValue{Int: v}, err
	case customText:
		v, err := r.ReadString()
		return model.CustomValue{Str: v, IsText: true}, err
	default:
		return model.CustomValue{}, fmt.Errorf("%w: custom kind %d", ErrUnknownAttribute, kind)
	}
}
