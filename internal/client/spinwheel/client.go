package spinwheel

import (
	"github.com/crickstats/backend/pkg/api"
	"github.com/crickstats/backend/pkg/errorx"
)

// parseEnvelope unwraps the {code, error, data} envelope of a server
// response. A non-zero code becomes an error carrying the server message
// verbatim; nothing is rephrased on the way to the user.
func parseEnvelope(resp *api.Response, out any) error {
	code, _ := resp.Body["code"].(float64)
	if code != 0 {
		msg, _ := resp.Body["error"].(string)
		return errorx.Error{Code: errorx.Code(code), Message: msg}
	}

	if out == nil {
		return nil
	}

	return api.Decode(resp.Body["data"], out)
}
