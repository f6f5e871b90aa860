package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/spotkit/internal/shared"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	return data
}

func mustParse(t *testing.T, s string) Value {
	t.Helper()
	v, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("failed to parse %s: %v", s, err)
	}
	return v
}

func assertDecodeError(t *testing.T, err error, path string) *DecodeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected decode error at %s, got nil", path)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if !errors.Is(err, shared.ErrDecode) {
		t.Errorf("expected error to match shared.ErrDecode: %v", err)
	}
	if path != "" && de.Path != path {
		t.Errorf("expected error path %s, got %s (%v)", path, de.Path, err)
	}
	return de
}

func TestParse(t *testing.T) {
	t.Run("Valid Document", func(t *testing.T) {
		v := mustParse(t, `{"a": 1}`)
		if v.Path() != "$" {
			t.Errorf("expected root path $, got %s", v.Path())
		}
		if v.Kind() != "object" {
			t.Errorf("expected object, got %s", v.Kind())
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{"a": `))
		assertDecodeError(t, err, "$")
	})

	t.Run("Trailing Data", func(t *testing.T) {
		_, err := Parse([]byte(`{} {}`))
		assertDecodeError(t, err, "$")
	})

	t.Run("Null Document", func(t *testing.T) {
		v := mustParse(t, `null`)
		if !v.IsNull() {
			t.Error("expected null value")
		}
	})
}

func TestFields(t *testing.T) {
	doc := `{
		"name": "x",
		"count": 3,
		"ratio": 0.5,
		"flag": true,
		"nothing": null,
		"tags": ["a", "b"],
		"urls": {"spotify": "https://open.spotify.com"},
		"fraction": 1.5
	}`

	t.Run("Required Values", func(t *testing.T) {
		f := mustParse(t, doc).Fields()
		if got := f.String("name"); got != "x" {
			t.Errorf("expected name x, got %s", got)
		}
		if got := f.Int("count"); got != 3 {
			t.Errorf("expected count 3, got %d", got)
		}
		if got := f.Float("ratio"); got != 0.5 {
			t.Errorf("expected ratio 0.5, got %v", got)
		}
		if got := f.Bool("flag"); !got {
			t.Error("expected flag true")
		}
		if got := f.Strings("tags"); len(got) != 2 || got[1] != "b" {
			t.Errorf("unexpected tags %v", got)
		}
		if got := f.StringMap("urls"); got["spotify"] != "https://open.spotify.com" {
			t.Errorf("unexpected urls %v", got)
		}
		if err := f.Err(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Optional Defaults", func(t *testing.T) {
		f := mustParse(t, doc).Fields()
		if got := f.OptString("nothing"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
		if got := f.OptInt("missing", -1); got != -1 {
			t.Errorf("expected default -1, got %d", got)
		}
		if got := f.OptInt("nothing", 7); got != 7 {
			t.Errorf("expected default 7 for null, got %d", got)
		}
		if got := f.OptBool("missing"); got {
			t.Error("expected false")
		}
		if got := f.NullBool("nothing"); got != nil {
			t.Errorf("expected nil, got %v", *got)
		}
		if got := f.NullBool("flag"); got == nil || !*got {
			t.Error("expected pointer to true")
		}
		if got := f.OptStrings("missing"); got != nil {
			t.Errorf("expected nil slice, got %v", got)
		}
		if err := f.Err(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		read   func(f *Fields)
		path   string
		reason string
	}{
		{"Missing Required", func(f *Fields) { f.String("absent") }, "$.absent", "missing required field"},
		{"Null Required", func(f *Fields) { f.Int("nothing") }, "$.nothing", "required field is null"},
		{"String As Int", func(f *Fields) { f.Int("name") }, "$.name", "expected integer, got string"},
		{"Int As String", func(f *Fields) { f.String("count") }, "$.count", "expected string, got number"},
		{"Fraction As Int", func(f *Fields) { f.Int("fraction") }, "$.fraction", "expected integer, got 1.5"},
		{"Optional Wrong Type", func(f *Fields) { f.OptBool("name") }, "$.name", "expected boolean, got string"},
		{"List Element Wrong Type", func(f *Fields) { f.Strings("urls") }, "$.urls", "expected array, got object"},
		{"Map Value Wrong Type", func(f *Fields) { f.StringMap("tags") }, "$.tags", "expected object, got array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustParse(t, doc).Fields()
			tt.read(f)
			de := assertDecodeError(t, f.Err(), tt.path)
			if de.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, de.Reason)
			}
		})
	}

	t.Run("First Error Sticks", func(t *testing.T) {
		f := mustParse(t, doc).Fields()
		f.String("absent")
		if got := f.String("name"); got != "" {
			t.Errorf("expected reads after a failure to return zero values, got %q", got)
		}
		f.Int("name")
		assertDecodeError(t, f.Err(), "$.absent")
	})

	t.Run("Non Object", func(t *testing.T) {
		f := mustParse(t, `[1, 2]`).Fields()
		de := assertDecodeError(t, f.Err(), "$")
		if !strings.Contains(de.Reason, "expected object") {
			t.Errorf("unexpected reason %q", de.Reason)
		}
	})

	t.Run("Int64 Keeps Epoch Milliseconds", func(t *testing.T) {
		f := mustParse(t, `{"timestamp": 9007199254740993, "small": 12}`).Fields()
		if got := f.Int64("timestamp"); got != 9007199254740993 {
			t.Errorf("expected exact 64-bit value, got %d", got)
		}
		if got := f.Int64("small"); got != 12 {
			t.Errorf("expected 12, got %d", got)
		}
		if err := f.Err(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f = mustParse(t, `{"timestamp": 1e30}`).Fields()
		f.Int64("timestamp")
		assertDecodeError(t, f.Err(), "$.timestamp")
	})

	t.Run("Catalog Strings", func(t *testing.T) {
		f := mustParse(t, doc).Fields()
		f.CatalogString("nothing")
		assertDecodeError(t, f.Err(), "$.nothing")

		f = mustParse(t, doc).Fields()
		f.MarkLocal()
		if got := f.CatalogString("nothing"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
		if got := f.CatalogString("name"); got != "x" {
			t.Errorf("expected x, got %q", got)
		}
		if !f.Value("urls").Fields().Local() {
			t.Error("expected nested objects to inherit local rules")
		}
		if err := f.Err(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestDecodeList(t *testing.T) {
	t.Run("Element Path", func(t *testing.T) {
		v := mustParse(t, `{"artists": [{"id": "a", "name": "A", "href": "h", "uri": "u"}, {"id": "b"}]}`)
		f := v.Fields()
		RequiredList(f, "artists", DecodeArtist)
		assertDecodeError(t, f.Err(), "$.artists[1].href")
	})

	t.Run("Null Elements", func(t *testing.T) {
		v := mustParse(t, `[null, {"url": "https://i.scdn.co/x"}]`)
		images, err := DecodeList(v, DecodeImage)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(images) != 2 || images[0] != nil || images[1].URL != "https://i.scdn.co/x" {
			t.Errorf("unexpected images %+v", images)
		}
	})
}

func TestDecodeError(t *testing.T) {
	t.Run("Message", func(t *testing.T) {
		err := &DecodeError{Path: "$.id", Reason: "missing required field"}
		if err.Error() != "decode $.id: missing required field" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Wraps Cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &DecodeError{Path: "$", Reason: "invalid value", Err: cause}
		if !errors.Is(err, cause) {
			t.Error("expected cause to be reachable")
		}
		if !errors.Is(err, shared.ErrDecode) {
			t.Error("expected shared.ErrDecode")
		}
	})
}
