package api

import (
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
)

// DecodeQuery fills a filter struct from query parameters using its
// mapstructure tags. Values are decoded weakly so "?limit=20&seen=false"
// lands in int and *bool fields directly.
func DecodeQuery(c echo.Context, out interface{}) error {
	params := map[string]string{}
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return apperr.Integrity(err, "building query decoder")
	}
	if err := dec.Decode(params); err != nil {
		return apperr.Validation("invalid query parameters: %v", err)
	}
	return nil
}
