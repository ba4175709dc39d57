package pinot

import (
	"bytes"
	"encoding/json"
)

// decodeJSONWithNumber keeps numbers as json.Number so LONG values survive decoding intact.
func decodeJSONWithNumber(bodyBytes []byte, out interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(bodyBytes))
	decoder.UseNumber()
	return decoder.Decode(out)
}
