package mpesa

import "encoding/json"

// The provider has been observed sending correlation keys in several
// casings depending on the endpoint and API version. Extraction tolerates
// all of them; storage is canonical.
var checkoutKeyVariants = []string{"CheckoutRequestID", "checkoutRequestId", "checkoutRequestID", "checkout_request_id"}
var merchantKeyVariants = []string{"MerchantRequestID", "merchantRequestId", "merchantRequestID", "merchant_request_id"}

// CallbackEnvelope is the STK callback body: {"Body":{"stkCallback":{...}}}.
// Fields beyond the known ones are retained in Raw for audit storage.
type CallbackEnvelope struct {
	Body struct {
		STKCallback json.RawMessage `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback is the decoded inner callback.
type STKCallback struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Metadata          map[string]any
}

// IsPaid reports whether the provider confirmed the payment.
func (c *STKCallback) IsPaid() bool {
	return c.ResultCode == 0
}

// ParseCallback decodes a raw callback payload. It accepts both the
// enveloped form and a bare stkCallback object, and tolerates the known
// casing variants of the correlation keys.
func ParseCallback(raw []byte) (*STKCallback, error) {
	var env CallbackEnvelope
	inner := raw
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Body.STKCallback) > 0 {
		inner = env.Body.STKCallback
	}

	var m map[string]any
	if err := json.Unmarshal(inner, &m); err != nil {
		return nil, err
	}

	cb := &STKCallback{
		CheckoutRequestID: firstString(m, checkoutKeyVariants),
		MerchantRequestID: firstString(m, merchantKeyVariants),
		ResultDesc:        firstStringKeys(m, "ResultDesc", "resultDesc"),
		Metadata:          FlattenCallbackMetadata(m),
	}

	if v, ok := numberValue(m, "ResultCode", "resultCode"); ok {
		cb.ResultCode = int(v)
	}

	return cb, nil
}

// FlattenCallbackMetadata turns the CallbackMetadata Item array of
// {Name, Value} pairs into a flat map. Missing or malformed metadata yields
// an empty map rather than an error.
func FlattenCallbackMetadata(body map[string]any) map[string]any {
	out := map[string]any{}

	meta, ok := body["CallbackMetadata"].(map[string]any)
	if !ok {
		if meta, ok = body["callbackMetadata"].(map[string]any); !ok {
			return out
		}
	}

	items, ok := meta["Item"].([]any)
	if !ok {
		if items, ok = meta["item"].([]any); !ok {
			return out
		}
	}

	for _, it := range items {
		pair, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name, _ := pair["Name"].(string)
		if name == "" {
			name, _ = pair["name"].(string)
		}
		if name == "" {
			continue
		}
		out[name] = pair["Value"]
	}
	return out
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func firstStringKeys(m map[string]any, keys ...string) string {
	return firstString(m, keys)
}

func numberValue(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			var f float64
			if err := json.Unmarshal([]byte(v), &f); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
