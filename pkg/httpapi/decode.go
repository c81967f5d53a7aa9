package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"

	"github.com/go-faster/errors"

	"github.com/tablemaster/tablemaster/pkg/constants"
)

const maxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON reads a JSON body into dst and runs struct validation on it.
// Numbers are kept as json.Number so snapshot values round-trip unchanged.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return errors.Wrap(err, "decode request body")
	}
	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return nil
	}
	return constants.Validate.Struct(dst)
}
