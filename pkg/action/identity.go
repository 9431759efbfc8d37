package action

import (
	"github.com/google/uuid"
)

// Sign is the convention marker. Every action carries it in meta.sign;
// validation rejects records signed with anything else. The version suffix
// enables future convention migration.
const Sign = "acta/action/v1"

// idNamespace seeds deterministic identifier derivation. Deriving it from
// the marker keeps ids from colliding with other v5 namespaces.
var idNamespace = uuid.NewSHA1(uuid.Nil, []byte(Sign))

// Identify derives an action identifier from its type and payload.
//
// With uniq false the identifier is a name-based (version 5) UUID of the
// canonical JSON form of [type, payload]: the same type and structurally
// equal payload always produce the same id, regardless of map key order or
// payload construction. With uniq true a fresh random (version 4) UUID is
// returned on every call, so identical inputs still get distinct ids.
//
// A nil payload identifies as JSON null.
func Identify(typ string, payload Value, uniq bool) (string, error) {
	if typ == "" {
		return "", newEmptyTypeError("Identify")
	}
	if uniq {
		return uuid.New().String(), nil
	}

	if payload == nil {
		payload = Null{}
	}
	name, err := MarshalCanonical(Array{String(typ), payload})
	if err != nil {
		return "", newBadValueError("Identify", payload, err)
	}
	return uuid.NewSHA1(idNamespace, name).String(), nil
}

// MustIdentify is like Identify but panics on error. Use only in tests or
// when inputs are known to be valid.
func MustIdentify(typ string, payload Value, uniq bool) string {
	id, err := Identify(typ, payload, uniq)
	if err != nil {
		panic(err)
	}
	return id
}
