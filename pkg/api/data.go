package api

import (
	"net/http"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

type Parameter map[string]string

func (p Parameter) Encode() string {
	values := url.Values{}
	for k, v := range p {
		values.Set(k, v)
	}

	return values.Encode()
}

type JSON map[string]any

type Response struct {
	Code    int
	Header  http.Header
	RawBody []byte
	Body    JSON
}

// Decode maps a JSON object field of the response body onto a typed struct.
// Field names are matched against the json tags of out.
func Decode(obj any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(obj)
}
