package router

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/crickstats/backend/pkg/errorx"
)

// bindRequest fills the request object from, in increasing priority, the
// JSON body, the query string and the path wildcards. Query and path values
// are matched against the field's json tag.
func bindRequest(req *http.Request, obj any) error {
	if req.Body != nil && req.Method != http.MethodGet {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Cannot read the request body")
		}

		if len(body) > 0 {
			if err := json.Unmarshal(body, obj); err != nil {
				return errorx.New(errorx.BadRequest, "Cannot parse the request body")
			}
		}
	}

	value := reflect.ValueOf(obj).Elem()
	if value.Kind() != reflect.Struct {
		return nil
	}

	query := req.URL.Query()
	for i := 0; i < value.NumField(); i++ {
		field := value.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}

		raw := query.Get(name)
		if pathValue := req.PathValue(name); pathValue != "" {
			raw = pathValue
		}

		if raw == "" {
			continue
		}

		if err := setField(value.Field(i), raw); err != nil {
			return errorx.New(errorx.BadRequest, "Invalid value of %s", name)
		}
	}

	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	}

	return nil
}
