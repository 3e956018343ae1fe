package providers

import (
	"encoding/json"
	"testing"
)

func TestNormalizeAttributes(t *testing.T) {
	var raw map[string]any
	body := `{
		"login": "octocat",
		"id": 583231,
		"site_admin": false,
		"email": null,
		"score": 1.5,
		"plan": {"name": "pro", "space": 976562499},
		"tags": ["a", "b"]
	}`
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := NormalizeAttributes(raw)

	want := map[string]string{
		"login":      "octocat",
		"id":         "583231",
		"site_admin": "false",
		"score":      "1.5",
		"plan":       `{"name":"pro","space":976562499}`,
		"tags":       `["a","b"]`,
	}

	if len(got) != len(want) {
		t.Errorf("len(NormalizeAttributes()) = %d, want %d (%v)", len(got), len(want), got)
	}
	for name, value := range want {
		if got[name] != value {
			t.Errorf("attribute %q = %q, want %q", name, got[name], value)
		}
	}
	if _, ok := got["email"]; ok {
		t.Error("null attribute should be absent")
	}
}

func TestNormalizeAttributes_JSONNumber(t *testing.T) {
	got := NormalizeAttributes(map[string]any{"id": json.Number("12345678901234")})
	if got["id"] != "12345678901234" {
		t.Errorf("id = %q, want %q", got["id"], "12345678901234")
	}
}

func TestNormalizeAttributes_Empty(t *testing.T) {
	got := NormalizeAttributes(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("NormalizeAttributes(nil) = %v, want empty non-nil map", got)
	}
}
