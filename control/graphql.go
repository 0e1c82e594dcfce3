package control

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
)

// NewGraphqlType builds an object type and a matching input type from the json tagged
// fields of the struct type of val. Untagged fields are skipped.
func NewGraphqlType(name string, val interface{}) (*graphql.Object, *graphql.InputObject) {
	ref := reflect.Indirect(reflect.ValueOf(val)).Type()
	tagMap := newJSONTagFieldMap(ref)

	fields := graphql.Fields{}
	inputFields := graphql.InputObjectConfigFieldMap{}

	for tag, i := range tagMap {
		typ := scalarFor(ref.Field(i).Type)
		fields[tag] = &graphql.Field{Type: typ, Resolve: fieldResolver(i)}
		inputFields[tag] = &graphql.InputObjectFieldConfig{Type: typ}
	}

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:   name,
		Fields: fields,
	})
	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "input" + name,
		Fields: inputFields,
	})
	return obj, input
}

// applyArgs sets the fields of the struct pointed to by dst from a graphql input map.
func applyArgs(dst interface{}, args map[string]interface{}) error {
	elem := reflect.ValueOf(dst).Elem()
	tagMap := newJSONTagFieldMap(elem.Type())
	for arg, val := range args {
		i, ok := tagMap[arg]
		if !ok {
			return fmt.Errorf("unknown field: %s", arg)
		}
		f := elem.Field(i)
		v := reflect.ValueOf(val)
		if !v.Type().ConvertibleTo(f.Type()) {
			return fmt.Errorf("field %s: cannot use %T as %v", arg, val, f.Type())
		}
		f.Set(v.Convert(f.Type()))
	}
	return nil
}

func fieldResolver(i int) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v := reflect.Indirect(reflect.ValueOf(p.Source))
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("something went wrong: %#v", p.Source)
		}
		return v.Field(i).Interface(), nil
	}
}

func scalarFor(t reflect.Type) *graphql.Scalar {
	switch t.Kind() {
	case reflect.Bool:
		return graphql.Boolean
	case reflect.Float32, reflect.Float64:
		return graphql.Float
	case reflect.String:
		return graphql.String
	case reflect.Int, reflect.Int8, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint32, reflect.Uint64:
		return graphql.Int
	}
	panic(fmt.Sprint("unsupported type ", t))
}

func jsonTag(f *reflect.StructField) string {
	t := f.Tag.Get("json")
	return strings.Split(t, ",")[0]
}

func newJSONTagFieldMap(t reflect.Type) map[string]int {
	m := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if tag := jsonTag(&f); tag != "" && tag != "-" {
			m[tag] = i
		}
	}
	return m
}
