package model

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefKind tells which variant a Ref holds.
type RefKind uint8

const (
	// RefEmpty is a missing or null value.
	RefEmpty RefKind = iota
	// RefReference points to a document in another collection.
	RefReference
	// RefInline is an embedded {name} object.
	RefInline
	// RefLegacy is a bare string written by older clients.
	RefLegacy
)

// Ref is a post's author or category.
//
// Stored as an ObjectID, an inline {name} document or, for old data, a string.
// Name and Email of a reference are filled by Populate and never persisted.
type Ref struct {
	kind   RefKind
	id     primitive.ObjectID
	name   string
	legacy string

	populated bool
	email     string
}

// RefTo returns a reference to id.
func RefTo(id primitive.ObjectID) Ref {
	return Ref{kind: RefReference, id: id}
}

// InlineRef returns an inline {name} value.
func InlineRef(name string) Ref {
	return Ref{kind: RefInline, name: name}
}

// LegacyRef returns a bare string value.
func LegacyRef(raw string) Ref {
	return Ref{kind: RefLegacy, legacy: raw}
}

// Kind returns the variant.
func (r Ref) Kind() RefKind { return r.kind }

// ID returns the referenced id, zero unless Kind is RefReference.
func (r Ref) ID() primitive.ObjectID { return r.id }

// Name returns the inline or populated name.
func (r Ref) Name() string { return r.name }

// Email returns the populated email.
func (r Ref) Email() string { return r.email }

// Legacy returns the raw string of a RefLegacy value.
func (r Ref) Legacy() string { return r.legacy }

// IsPopulated reports whether Populate was called on a reference.
func (r Ref) IsPopulated() bool { return r.populated }

// Populate returns a copy of a reference carrying the resolved fields.
// Other variants are returned unchanged.
func (r Ref) Populate(name, email string) Ref {
	if r.kind != RefReference {
		return r
	}

	r.populated = true
	r.name = name
	r.email = email
	return r
}

// HasName reports whether the value renders as an object with a name.
func (r Ref) HasName() bool {
	switch r.kind {
	case RefInline:
		return r.name != ""
	case RefReference:
		return r.populated && r.name != ""
	default:
		return false
	}
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (r Ref) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch r.kind {
	case RefReference:
		return bson.MarshalValue(r.id)
	case RefInline:
		return bson.MarshalValue(bson.D{{Key: "name", Value: r.name}})
	case RefLegacy:
		return bson.MarshalValue(r.legacy)
	default:
		return bsontype.Null, nil, nil
	}
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (r *Ref) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*r = Ref{}
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.ObjectID:
		id, ok := raw.ObjectIDOK()
		if !ok {
			return errors.New("malformed objectid")
		}
		*r = RefTo(id)
	case bsontype.EmbeddedDocument:
		doc, ok := raw.DocumentOK()
		if !ok {
			return errors.New("malformed document")
		}
		if name, ok := doc.Lookup("name").StringValueOK(); ok && name != "" {
			*r = InlineRef(name)
			return nil
		}
		if id, ok := doc.Lookup("_id").ObjectIDOK(); ok {
			*r = RefTo(id)
		}
	case bsontype.String:
		s, _ := raw.StringValueOK()
		*r = LegacyRef(s)
	}

	return nil
}

type refJSON struct {
	ID    *primitive.ObjectID `json:"_id,omitempty"`
	Name  string              `json:"name,omitempty"`
	Email string              `json:"email,omitempty"`
}

// MarshalJSON renders references as {_id,...}, inline values as {name}
// and anything else as null.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RefReference:
		id := r.id
		return json.Marshal(refJSON{ID: &id, Name: r.name, Email: r.email})
	case RefInline:
		return json.Marshal(refJSON{Name: r.name})
	default:
		return []byte("null"), nil
	}
}
