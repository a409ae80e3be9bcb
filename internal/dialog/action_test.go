package dialog

import "testing"

func TestDecodePayload(t *testing.T) {
	cases := []struct {
		payload string
		want    Action
		ok      bool
	}{
		{"mode:Cash", SelectMode{Value: "Cash"}, true},
		{"acct:A", SelectAccount{Value: "A"}, true},
		{"filter_acct:S", FilterByAccount{Value: "S"}, true},
		{"cancel", Cancel{}, true},
		{"mode:", nil, false},
		{"acct:", nil, false},
		{"filter_acct:", nil, false},
		{"delete:1", nil, false},
		{"", nil, false},
	}
	for _, tc := range cases {
		got, ok := DecodePayload(tc.payload)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: expected %#v/%v, got %#v/%v", tc.payload, tc.want, tc.ok, got, ok)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	if a, _ := DecodePayload(EncodeMode("Online")); a != (SelectMode{Value: "Online"}) {
		t.Fatalf("unexpected %#v", a)
	}
	if a, _ := DecodePayload(EncodeAccount("C")); a != (SelectAccount{Value: "C"}) {
		t.Fatalf("unexpected %#v", a)
	}
	if a, _ := DecodePayload(EncodeFilter("O")); a != (FilterByAccount{Value: "O"}) {
		t.Fatalf("unexpected %#v", a)
	}
}
