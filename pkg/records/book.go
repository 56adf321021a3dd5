package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/record"
)

// BOOKTag is the book record.
var BOOKTag = codec.TagOf("BOOK")

var inam = codec.TagOf("INAM")

// BookFlags is the DATA flag byte of a book.
type BookFlags uint8

const (
	BookTeachesSkill BookFlags = 0x01
	BookCantBeTaken  BookFlags = 0x02
	BookTeachesSpell BookFlags = 0x04
)

// BookTypes is the DATA type byte of a book.
var BookTypes = codec.NewEnum("book type", map[uint8]string{
	0x00: "book",
	0xFF: "note",
})

// BookData is the DATA field of a book. Teaches is a skill index or a raw
// spell FormID depending on Flags.
type BookData struct {
	Flags   BookFlags `json:"flags"`
	Type    uint8     `json:"type"`
	Unused  [2]byte   `json:"-"`
	Teaches uint32    `json:"teaches"`
	Value   uint32    `json:"value"`
	Weight  float32   `json:"weight"`
}

// BOOK is a readable book or note.
type BOOK struct {
	Base
	Bounds        Bounds         `json:"bounds"`
	Name          *codec.LString `json:"name,omitempty"`
	Model         *Model         `json:"model,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	Text          codec.LString  `json:"text"`
	Keywords      []formid.ID    `json:"keywords,omitempty"`
	Data          BookData       `json:"data"`
	Spell         *formid.ID     `json:"spell,omitempty"`
	InventoryArt  *formid.ID     `json:"inventory_art,omitempty"`
	LoadingScreen *codec.LString `json:"loading_screen,omitempty"`
}

// DecodeBOOK decodes a book.
func DecodeBOOK(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	b := &BOOK{Base: base}
	if b.EditorID, err = editorID(c); err != nil {
		return nil, err
	}
	if b.Bounds, err = field.Parse(c, OBND, codec.Struct[Bounds]); err != nil {
		return nil, err
	}
	if b.Name, err = field.TryParsePtr(c, FULL, ctx.LStrings()); err != nil {
		return nil, err
	}
	if b.Model, err = model(c); err != nil {
		return nil, err
	}
	if b.Icon, _, err = field.TryParse(c, ICON, codec.ZString); err != nil {
		return nil, err
	}
	if b.Text, err = field.Parse(c, DESC, ctx.LStrings()); err != nil {
		return nil, err
	}
	if b.Keywords, err = keywords(c, ctx); err != nil {
		return nil, err
	}
	if b.Data, err = field.Parse(c, DATA, codec.Struct[BookData]); err != nil {
		return nil, err
	}
	if _, err := BookTypes.Check(b.Data.Type); err != nil {
		return nil, err
	}
	if codec.Has(b.Data.Flags, BookTeachesSpell) {
		spell, err := ctx.Table.Resolve(b.Data.Teaches)
		if err != nil {
			return nil, err
		}
		b.Spell = &spell
	}

	// INAM and CNAM trail DATA in either order depending on the tool that
	// wrote the plugin.
	seen := field.Seen{}
	for !c.Done() {
		tag, err := c.PeekTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case inam:
			if err := seen.Mark(tag); err != nil {
				return nil, err
			}
			if b.InventoryArt, err = field.TryParsePtr(c, inam, ctx.FormIDs()); err != nil {
				return nil, err
			}
		case CNAM:
			if err := seen.Mark(tag); err != nil {
				return nil, err
			}
			if b.LoadingScreen, err = field.TryParsePtr(c, CNAM, ctx.LStrings()); err != nil {
				return nil, err
			}
		default:
			return finish(b, c)
		}
	}
	return finish(b, c)
}
