package mpesa

import "testing"

func TestParseCallbackEnveloped(t *testing.T) {
	raw := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 1000},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`)

	cb, err := ParseCallback(raw)
	if err != nil {
		t.Fatalf("ParseCallback error: %v", err)
	}
	if cb.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Errorf("CheckoutRequestID = %q", cb.CheckoutRequestID)
	}
	if cb.MerchantRequestID != "29115-34620561-1" {
		t.Errorf("MerchantRequestID = %q", cb.MerchantRequestID)
	}
	if !cb.IsPaid() {
		t.Error("expected IsPaid() for ResultCode 0")
	}
	if cb.Metadata["MpesaReceiptNumber"] != "NLJ7RT61SV" {
		t.Errorf("receipt = %v", cb.Metadata["MpesaReceiptNumber"])
	}
	if amt, ok := cb.Metadata["Amount"].(float64); !ok || amt != 1000 {
		t.Errorf("amount = %v", cb.Metadata["Amount"])
	}
}

func TestParseCallbackCasingVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"provider casing", `{"CheckoutRequestID": "ws_CO_1", "MerchantRequestID": "m-1", "ResultCode": 1}`},
		{"lower camel", `{"checkoutRequestId": "ws_CO_1", "merchantRequestId": "m-1", "resultCode": 1}`},
		{"mixed ID suffix", `{"checkoutRequestID": "ws_CO_1", "merchantRequestID": "m-1", "ResultCode": 1}`},
		{"snake case", `{"checkout_request_id": "ws_CO_1", "merchant_request_id": "m-1", "ResultCode": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := ParseCallback([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseCallback error: %v", err)
			}
			if cb.CheckoutRequestID != "ws_CO_1" {
				t.Errorf("CheckoutRequestID = %q, want ws_CO_1", cb.CheckoutRequestID)
			}
			if cb.MerchantRequestID != "m-1" {
				t.Errorf("MerchantRequestID = %q, want m-1", cb.MerchantRequestID)
			}
			if cb.IsPaid() {
				t.Error("nonzero result code must not report paid")
			}
		})
	}
}

func TestParseCallbackFailure(t *testing.T) {
	raw := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user."
			}
		}
	}`)

	cb, err := ParseCallback(raw)
	if err != nil {
		t.Fatalf("ParseCallback error: %v", err)
	}
	if cb.IsPaid() {
		t.Error("cancelled push must not report paid")
	}
	if cb.ResultCode != 1032 {
		t.Errorf("ResultCode = %d, want 1032", cb.ResultCode)
	}
	if len(cb.Metadata) != 0 {
		t.Errorf("expected empty metadata, got %v", cb.Metadata)
	}
}

func TestParseCallbackInvalidJSON(t *testing.T) {
	if _, err := ParseCallback([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid payload")
	}
}

func TestFlattenCallbackMetadataMalformed(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing", map[string]any{}},
		{"wrong type", map[string]any{"CallbackMetadata": "nope"}},
		{"no items", map[string]any{"CallbackMetadata": map[string]any{}}},
		{"item not object", map[string]any{"CallbackMetadata": map[string]any{"Item": []any{"x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FlattenCallbackMetadata(tt.body)
			if len(out) != 0 {
				t.Errorf("expected empty map, got %v", out)
			}
		})
	}
}
