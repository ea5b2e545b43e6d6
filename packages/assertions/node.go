package assertions

import (
	"encoding/json"
	"strings"

	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// NodeAssert checks a single entity.
type NodeAssert struct {
	chain
	entity *graph.Entity
}

// ThatNode starts an assertion chain on e.
func ThatNode(t assert.TestingT, e *graph.Entity) *NodeAssert {
	return &NodeAssert{
		chain:  newChain(t, Representation(e)),
		entity: e,
	}
}

// As overrides the failure message of the checks that follow.
func (a *NodeAssert) As(format string, args ...any) *NodeAssert {
	a.as(format, args...)
	return a
}

func (a *NodeAssert) HasKind(kind graph.Kind) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if !a.notNil("has kind") {
		return a
	}
	if a.entity.Kind() != kind {
		a.fail("has kind", kind, a.entity.Kind(), "expected %s to have kind %s, got %s", a.subject, kind, a.entity.Kind())
		return a
	}
	a.pass("has kind", kind, kind)
	return a
}

func (a *NodeAssert) HasID(id int64) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if !a.notNil("has id") {
		return a
	}
	if a.entity.ID() != id {
		a.fail("has id", id, a.entity.ID(), "expected %s to have id %d", a.subject, id)
		return a
	}
	a.pass("has id", id, id)
	return a
}

// HasProperty fails unless key is set to a value equal to expected.
// Numeric values are compared after conversion, so 30 matches int64(30).
func (a *NodeAssert) HasProperty(key string, expected any) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	op := "has property " + key
	if !a.notNil(op) {
		return a
	}
	actual, ok := a.entity.Property(key)
	if !ok {
		a.fail(op, expected, nil, "expected %s to have property %q", a.subject, key)
		return a
	}
	if !assert.ObjectsAreEqualValues(expected, actual) {
		a.fail(op, expected, actual, "expected %s property %q to be %v, got %v", a.subject, key, expected, actual)
		return a
	}
	a.pass(op, expected, actual)
	return a
}

func (a *NodeAssert) DoesNotHaveProperty(key string) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	op := "does not have property " + key
	if !a.notNil(op) {
		return a
	}
	if actual, ok := a.entity.Property(key); ok {
		a.fail(op, nil, actual, "expected %s not to have property %q, got %v", a.subject, key, actual)
		return a
	}
	a.pass(op, nil, nil)
	return a
}

// HasPropertyPath looks path up in the JSON encoding of the entity's
// properties, e.g. "address.city" or "tags.0".
func (a *NodeAssert) HasPropertyPath(path string, expected any) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	op := "has property path " + path
	if !a.notNil(op) {
		return a
	}
	data, err := json.Marshal(a.entity.Properties())
	if err != nil {
		a.fail(op, expected, nil, "failed to encode properties of %s: %v", a.subject, err)
		return a
	}

	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		a.fail(op, expected, nil, "expected %s to have property path %q", a.subject, path)
		return a
	}
	actual := result.Value()
	if !assert.ObjectsAreEqualValues(expected, actual) {
		a.fail(op, expected, actual, "expected %s property path %q to be %v, got %v", a.subject, path, expected, actual)
		return a
	}
	a.pass(op, expected, actual)
	return a
}

// MatchesSchema validates the entity's properties against a JSON schema.
func (a *NodeAssert) MatchesSchema(schema string) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if !a.notNil("matches schema") {
		return a
	}
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(a.entity.Properties())

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		a.fail("matches schema", schema, nil, "schema validation error: %v", err)
		return a
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		a.fail("matches schema", schema, errs, "%s failed schema validation: %s", a.subject, strings.Join(errs, "; "))
		return a
	}
	a.pass("matches schema", schema, nil)
	return a
}

// IsEqualTo fails unless other has the same kind and identity.
func (a *NodeAssert) IsEqualTo(other graph.Identified) *NodeAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	want := Representation(other)
	if a.subject != want {
		a.fail("is equal to", want, a.subject, "expected %s, got %s", want, a.subject)
		return a
	}
	a.pass("is equal to", want, a.subject)
	return a
}

func (a *NodeAssert) notNil(op string) bool {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if a.entity != nil {
		return true
	}
	a.fail(op, "entity", nil, "expected an entity, got nil")
	return false
}
