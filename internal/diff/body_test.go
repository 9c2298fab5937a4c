package diff

import (
	"strings"
	"testing"

	"github.com/sadopc/capscope/internal/capture"
)

func resp(contentType, body string) *capture.Response {
	r := &capture.Response{StatusCode: 200, Body: body}
	if contentType != "" {
		r.Headers = capture.NewHeader(map[string]string{"Content-Type": contentType})
	}
	return r
}

func hasPath(paths []string, path string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p, path+":") {
			return true
		}
	}
	return false
}

func TestDiffBodyNestedJSON(t *testing.T) {
	got := DiffBody(
		resp("application/json", `{"a":1,"b":{"c":2}}`),
		resp("application/json", `{"a":1,"b":{"c":3}}`),
	)
	if got == nil {
		t.Fatal("expected a body diff")
	}
	if got.ContentType != KindJSON {
		t.Errorf("ContentType = %q", got.ContentType)
	}
	if got.Changes < 1 {
		t.Errorf("Changes = %d", got.Changes)
	}
	if !hasPath(got.KeyDifferences, "b.c") {
		t.Errorf("KeyDifferences = %v, want b.c", got.KeyDifferences)
	}
}

func TestDiffBodyJSONCases(t *testing.T) {
	tests := []struct {
		name        string
		left, right string
		wantChanges int
		wantPaths   []string
	}{
		{"added and removed keys", `{"a":1,"b":2}`, `{"b":2,"c":3}`, 2, []string{"a", "c"}},
		{"type mismatch", `{"a":"1"}`, `{"a":1}`, 1, []string{"a"}},
		{"array length", `{"items":[1,2]}`, `{"items":[1,2,3]}`, 1, []string{"items"}},
		{"array elements", `[1,2]`, `[2,1]`, 1, []string{"(root)"}},
		{"root type", `{}`, `[]`, 1, []string{"(root)"}},
		{"null vs value", `{"a":null}`, `{"a":false}`, 1, []string{"a"}},
		{"integer beyond float precision", `{"id":9007199254740993}`, `{"id":9007199254740992}`, 1, []string{"id"}},
		{"large ids in array", `{"ids":[9007199254740993]}`, `{"ids":[9007199254740992]}`, 1, []string{"ids"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffBody(resp("application/json", tt.left), resp("application/json", tt.right))
			if got == nil {
				t.Fatal("expected a body diff")
			}
			if got.Changes != tt.wantChanges {
				t.Errorf("Changes = %d, want %d (%v)", got.Changes, tt.wantChanges, got.KeyDifferences)
			}
			for _, p := range tt.wantPaths {
				if !hasPath(got.KeyDifferences, p) {
					t.Errorf("missing path %q in %v", p, got.KeyDifferences)
				}
			}
		})
	}
}

func TestDiffBodyCapsKeyDifferences(t *testing.T) {
	got := DiffBody(
		resp("application/json", `{"a":1,"b":1,"c":1,"d":1,"e":1,"f":1,"g":1}`),
		resp("application/json", `{"a":2,"b":2,"c":2,"d":2,"e":2,"f":2,"g":2}`),
	)
	if got == nil {
		t.Fatal("expected a body diff")
	}
	if got.Changes != 7 {
		t.Errorf("Changes = %d, want 7", got.Changes)
	}
	if len(got.KeyDifferences) != MaxKeyDifferences {
		t.Errorf("len(KeyDifferences) = %d, want %d", len(got.KeyDifferences), MaxKeyDifferences)
	}
}

func TestDiffBodyLargeIntegerLiteral(t *testing.T) {
	got := DiffBody(
		resp("application/json", `{"id":9007199254740993}`),
		resp("application/json", `{"id":9007199254740992}`),
	)
	if got == nil || len(got.KeyDifferences) != 1 {
		t.Fatalf("got %+v, want one key difference", got)
	}
	want := "id: value changed from 9007199254740993 to 9007199254740992"
	if got.KeyDifferences[0] != want {
		t.Errorf("KeyDifferences[0] = %q, want %q", got.KeyDifferences[0], want)
	}
}

func TestDiffBodyTrailingData(t *testing.T) {
	got := DiffBody(resp("application/json", `{"a":1}`), resp("application/json", `{"a":1} {"b":2}`))
	if got == nil || got.Changes != 1 || len(got.KeyDifferences) != 0 {
		t.Errorf("got %+v, want one opaque change", got)
	}
}

func TestDiffBodyUnparseableJSON(t *testing.T) {
	got := DiffBody(resp("application/json", `{"a":1}`), resp("application/json", `<html>`))
	if got == nil || got.Changes != 1 || len(got.KeyDifferences) != 0 {
		t.Errorf("got %+v, want one opaque change", got)
	}
}

func TestDiffBodyNoDifference(t *testing.T) {
	tests := []struct {
		name        string
		left, right *capture.Response
	}{
		{"equal", resp("application/json", `{"a":1}`), resp("application/json", `{"a":1}`)},
		{"both empty", resp("", ""), resp("", "")},
		{"both nil", nil, nil},
		{"semantically equal json", resp("application/json", `{"a":1,"b":2}`), resp("application/json", `{ "b": 2, "a": 1 }`)},
		{"equal numbers in different notation", resp("application/json", `{"a":1.0,"b":[1e2]}`), resp("application/json", `{"a":1,"b":[100]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiffBody(tt.left, tt.right); got != nil {
				t.Errorf("DiffBody() = %+v, want nil", got)
			}
		})
	}
}

func TestDiffBodyKinds(t *testing.T) {
	tests := []struct {
		contentType string
		wantKind    ContentKind
		wantChanges int
	}{
		{"text/plain", KindText, 2},
		{"text/html; charset=utf-8", KindHTML, 2},
		{"application/xml", KindXML, 2},
		{"application/octet-stream", KindBinary, 1},
		{"", KindText, 2},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got := DiffBody(resp(tt.contentType, "one\ntwo"), resp("", "one\nthree"))
			if got == nil {
				t.Fatal("expected a body diff")
			}
			if got.ContentType != tt.wantKind || got.Changes != tt.wantChanges {
				t.Errorf("got %q/%d, want %q/%d", got.ContentType, got.Changes, tt.wantKind, tt.wantChanges)
			}
		})
	}
}
