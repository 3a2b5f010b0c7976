// Package envelope turns the backend's inconsistent response shapes into
// typed values. List replies are recognised in a fixed order: a bare array,
// then {success, data: [...]}, then {data: [...]}; anything else is a
// malformed response.
package envelope

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/boldserve/adminconsole/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Normalizer is implemented by entities that fold alias fields after decoding.
type Normalizer interface {
	Normalize()
}

// Keyed is implemented by entities with a backend identifier.
type Keyed interface {
	Key() string
}

// Shape names the envelope a reply was recognised as.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBareArray
	ShapeSuccessData
	ShapeData
)

func (s Shape) String() string {
	switch s {
	case ShapeBareArray:
		return "bare_array"
	case ShapeSuccessData:
		return "success_data"
	case ShapeData:
		return "data"
	default:
		return "unknown"
	}
}

// ParseList decodes a list reply.
func ParseList[T any](raw []byte) ([]T, error) {
	items, _, err := ParseListShape[T](raw)
	return items, err
}

// ParseListShape is ParseList that also reports which shape matched.
func ParseListShape[T any](raw []byte) ([]T, Shape, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ShapeUnknown, apperr.Malformed(raw, errors.Wrap(err, "decode json"))
	}

	switch v := doc.(type) {
	case []interface{}:
		items, err := decodeList[T](raw, v)
		return items, ShapeBareArray, err
	case map[string]interface{}:
		if flag, ok := v["success"]; ok {
			if err := checkSuccess(raw, v, flag); err != nil {
				return nil, ShapeSuccessData, err
			}
			items, err := listField[T](raw, v)
			return items, ShapeSuccessData, err
		}
		if _, ok := v["data"]; ok {
			items, err := listField[T](raw, v)
			return items, ShapeData, err
		}
	}
	return nil, ShapeUnknown, apperr.Malformed(raw, errors.New("no list envelope matched"))
}

// ParseOne decodes a single-entity reply: {success, data: {...}},
// {data: {...}}, or a bare object that carries an identifier.
func ParseOne[T any](raw []byte) (T, error) {
	var zero T
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, apperr.Malformed(raw, errors.Wrap(err, "decode json"))
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return zero, apperr.Malformed(raw, errors.New("expected an object"))
	}

	if flag, ok := obj["success"]; ok {
		if err := checkSuccess(raw, obj, flag); err != nil {
			return zero, err
		}
	}
	if inner, ok := obj["data"].(map[string]interface{}); ok {
		item, err := Decode[T](inner)
		if err != nil {
			return zero, apperr.Malformed(raw, err)
		}
		return item, nil
	}

	item, err := Decode[T](obj)
	if err != nil {
		return zero, apperr.Malformed(raw, err)
	}
	if k, ok := any(item).(Keyed); ok && k.Key() == "" {
		return zero, apperr.Malformed(raw, errors.New("object carries no identifier"))
	}
	return item, nil
}

// Decode converts one generic JSON object into T, tolerating numbers sent as
// strings and nested objects where a plain string is expected.
func Decode[T any](m map[string]interface{}) (T, error) {
	var item T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       objectToString,
		Result:           &item,
	})
	if err != nil {
		return item, err
	}
	if err := dec.Decode(m); err != nil {
		return item, err
	}
	if n, ok := any(&item).(Normalizer); ok {
		n.Normalize()
	}
	return item, nil
}

func checkSuccess(raw []byte, obj map[string]interface{}, flag interface{}) error {
	ok, err := cast.ToBoolE(flag)
	if err != nil {
		return apperr.Malformed(raw, errors.Wrap(err, "success flag"))
	}
	if ok {
		return nil
	}
	msg := ""
	for _, key := range []string{"message", "error", "msg"} {
		if s, isStr := obj[key].(string); isStr && s != "" {
			msg = s
			break
		}
	}
	return apperr.HTTP(http.StatusOK, raw, msg)
}

func listField[T any](raw []byte, obj map[string]interface{}) ([]T, error) {
	switch data := obj["data"].(type) {
	case nil:
		if _, present := obj["data"]; !present {
			return nil, apperr.Malformed(raw, errors.New("data field missing"))
		}
		return []T{}, nil
	case []interface{}:
		return decodeList[T](raw, data)
	default:
		return nil, apperr.Malformed(raw, fmt.Errorf("data is %T, want array", data))
	}
}

func decodeList[T any](raw []byte, elems []interface{}) ([]T, error) {
	items := make([]T, 0, len(elems))
	for i, elem := range elems {
		m, ok := elem.(map[string]interface{})
		if !ok {
			return nil, apperr.Malformed(raw, fmt.Errorf("item %d is %T, want object", i, elem))
		}
		item, err := Decode[T](m)
		if err != nil {
			return nil, apperr.Malformed(raw, errors.Wrapf(err, "item %d", i))
		}
		items = append(items, item)
	}
	return items, nil
}

// nameKeys are tried in order when a nested object stands where a string
// was expected, e.g. {"customer": {"name": "Asha"}}.
var nameKeys = []string{"fullName", "name", "title", "url", "_id", "id"}

func objectToString(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Map {
		return data, nil
	}
	m, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	for _, k := range nameKeys {
		if s := cast.ToString(m[k]); s != "" {
			return s, nil
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := cast.ToString(m[k]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", "), nil
}
