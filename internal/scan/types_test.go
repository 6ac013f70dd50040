package scan

import (
	"errors"
	"testing"
)

func TestParseNamespacedName_SplitsAtFirstColon(t *testing.T) {
	name, err := ParseNamespacedName("wd-wsdl:sometype")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Prefix != "wd-wsdl" || name.Local != "sometype" {
		t.Fatalf("unexpected split: %q / %q", name.Prefix, name.Local)
	}

	// 只在第一个 ':' 处拆分，其余部分全部归入本地名
	name, err = ParseNamespacedName("a:b:c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Prefix != "a" || name.Local != "b:c" {
		t.Fatalf("unexpected split: %q / %q", name.Prefix, name.Local)
	}
}

func TestParseNamespacedName_RoundTrip(t *testing.T) {
	for _, s := range []string{"wd:Validation_FaultType", "a:b:c", "xsd:string", ":x"} {
		name, err := ParseNamespacedName(s)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", s, err)
		}
		if name.String() != s {
			t.Fatalf("round-trip mismatch: %q -> %q", s, name.String())
		}
	}
}

func TestParseNamespacedName_MissingSeparator(t *testing.T) {
	_, err := ParseNamespacedName("Validation_FaultType")
	if err == nil {
		t.Fatalf("expected an error for a name without ':'")
	}
	if !errors.Is(err, ErrNotNamespaced) {
		t.Fatalf("expected ErrNotNamespaced, got %v", err)
	}
}

func TestParseKeyValue(t *testing.T) {
	kv, err := ParseKeyValue(`targetNamespace="urn:com.workday/bsvc"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv.Key != "targetNamespace" {
		t.Fatalf("unexpected key: %q", kv.Key)
	}
	if kv.Value != "urn:com.workday/bsvc" {
		t.Fatalf("quotes should be stripped, got %q", kv.Value)
	}

	if _, err := ParseKeyValue("no-separator"); err == nil {
		t.Fatalf("expected an error for a token without '='")
	}
}

func TestRange(t *testing.T) {
	r := Range{Begin: 2, End: 6}
	if r.Empty() || r.Len() != 4 {
		t.Fatalf("unexpected range state: %v empty=%v len=%d", r, r.Empty(), r.Len())
	}
	if !r.Contains(Range{Begin: 2, End: 6}) || r.Contains(Range{Begin: 2, End: 7}) {
		t.Fatalf("containment is inclusive of the full range only")
	}
	// 半开区间: End 本身不属于区间
	if !r.ContainsPoint(5) || r.ContainsPoint(6) {
		t.Fatalf("half-open point containment broken")
	}
	if !r.Intersects(Range{Begin: 5, End: 9}) || r.Intersects(Range{Begin: 6, End: 9}) {
		t.Fatalf("intersection check broken")
	}
	if got := r.Text("abcdefgh"); got != "cdef" {
		t.Fatalf("unexpected text slice: %q", got)
	}
}
