// Package keyfilter normalizes untyped request input (query strings and JSON
// bodies) into typed GrupoSet filters, changesets and new records.
//
// Coercion rules:
//   - IDSOCIEDAD, IDCEDI: integer (JSON number, integral float, numeric string)
//   - IDETIQUETA, IDVALOR, IDGRUPOET, ID: plain-text string
//   - ACTIVO, BORRADO: bool or the strings "true"/"false"
//
// A recognized field with an unusable value is a validation error.
package keyfilter

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// FromQuery flattens query parameters into an input map, keeping the first
// value of each parameter.
func FromQuery(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// Build keeps only the recognized filter fields of in and coerces them.
// Unrecognized field names are ignored; nil and empty values count as absent.
func Build(in map[string]any) (models.Filter, error) {
	var f models.Filter
	var err error

	if f.SociedadID, err = intField(in, models.FieldSociedad); err != nil {
		return models.Filter{}, err
	}
	if f.CediID, err = intField(in, models.FieldCedi); err != nil {
		return models.Filter{}, err
	}
	if f.EtiquetaID, err = stringField(in, models.FieldEtiqueta); err != nil {
		return models.Filter{}, err
	}
	if f.ValorID, err = stringField(in, models.FieldValor); err != nil {
		return models.Filter{}, err
	}
	if f.GrupoEtID, err = stringField(in, models.FieldGrupoEt); err != nil {
		return models.Filter{}, err
	}
	if f.ID, err = stringField(in, models.FieldID); err != nil {
		return models.Filter{}, err
	}
	if f.Activo, err = boolField(in, models.FieldActivo); err != nil {
		return models.Filter{}, err
	}
	if f.Borrado, err = boolField(in, models.FieldBorrado); err != nil {
		return models.Filter{}, err
	}
	return f, nil
}

// RequireKey builds a filter from in and requires all six key fields.
func RequireKey(in map[string]any) (models.Key, error) {
	f, err := Build(in)
	if err != nil {
		return models.Key{}, err
	}
	if missing := f.MissingKeyField(); missing != "" {
		return models.Key{}, apperr.Validation(
			"Missing key parameter: "+missing,
			missing+" is required",
		)
	}
	k, _ := f.FullKey()
	return k, nil
}

func intField(in map[string]any, name string) (*int, error) {
	v, ok := in[name]
	if !ok || v == nil {
		return nil, nil
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, ok := toInt(v)
	if !ok {
		return nil, invalid(name, v, "an integer")
	}
	return &n, nil
}

func stringField(in map[string]any, name string) (*string, error) {
	v, ok := in[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := toString(v)
	if !ok {
		return nil, invalid(name, v, "a string")
	}
	if s == "" {
		return nil, nil
	}
	if !plainText(s) {
		return nil, apperr.Validation(
			"Invalid value for "+name,
			name+" must be plain text (markup is not allowed)",
		)
	}
	return &s, nil
}

func boolField(in map[string]any, name string) (*bool, error) {
	v, ok := in[name]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := toBool(v)
	if !ok {
		return nil, invalid(name, v, `a boolean or "true"/"false"`)
	}
	return &b, nil
}

func invalid(name string, v any, want string) error {
	return apperr.Validation(
		"Invalid value for "+name,
		fmt.Sprintf("%s must be %s, got %T(%v)", name, want, v, v),
	)
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case float64:
		return floatToInt(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		if f, err := x.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		return x.String(), true
	case float64:
		if n, ok := floatToInt(x); ok {
			return strconv.Itoa(n), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	}
	return "", false
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.TrimSpace(x) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// plainText reports whether s survives the strict HTML policy unchanged.
func plainText(s string) bool {
	return html.UnescapeString(strict.Sanitize(s)) == s
}
