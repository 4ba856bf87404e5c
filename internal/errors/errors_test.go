package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "catalog error",
			code:    "P100",
			wantMsg: "Catalog fetch failed",
			wantCat: CategoryCatalog,
		},
		{
			name:    "event error",
			code:    "P120",
			wantMsg: "Event stream connection failed",
			wantCat: CategoryEvent,
		},
		{
			name:    "config error",
			code:    "P141",
			wantMsg: "Configuration not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "P999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q required", "url")
	if err.Message != `flag "url" required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != `flag "url" required` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestPaintError_Error(t *testing.T) {
	err := New("P101").WithDetail("unexpected EOF")
	want := "P101: Malformed catalog (unexpected EOF)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("P100").WithDetail("status 503").Wrap(fmt.Errorf("boom"))
	if !strings.HasSuffix(wrapped.Error(), ": boom") {
		t.Errorf("Error() = %q, want wrapped cause", wrapped.Error())
	}
}

func TestPaintError_Wrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	outer := New("P100").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should find wrapped error")
	}
}

func TestPaintError_Is(t *testing.T) {
	err := fmt.Errorf("load: %w", New("P101").WithDetail("bad json"))

	if !stderrors.Is(err, New("P101")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("P100")) {
		t.Error("errors.Is should not match a different code")
	}
	if !HasCode(err, "P101") || HasCode(err, "P100") {
		t.Error("HasCode mismatch")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "P100") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	pe := New("P100")
	if FromError(pe, "P101") != pe {
		t.Error("FromError should return PaintError as-is")
	}

	std := fmt.Errorf("plain")
	if got := FromError(std, "P101"); got.Wrapped != std || got.Code != "P101" {
		t.Errorf("FromError = %+v", got)
	}

	wrapped := fmt.Errorf("serve: %w", pe)
	if FromError(wrapped, "P170") != pe {
		t.Error("FromError should find a PaintError inside the chain")
	}
}

func TestLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var err error = New("P100").Wrap(fmt.Errorf("connection refused"))
	logger.Warn("catalog load failed", "error", err)

	var entry struct {
		Error map[string]string `json:"error"`
	}
	if e := json.Unmarshal(buf.Bytes(), &entry); e != nil {
		t.Fatalf("log line not JSON: %v\n%s", e, buf.String())
	}
	want := map[string]string{
		"code":   "P100",
		"msg":    "P100: Catalog fetch failed",
		"detail": "The paint catalog could not be retrieved from its source.",
		"cause":  "connection refused",
	}
	for k, v := range want {
		if entry.Error[k] != v {
			t.Errorf("error.%s = %q, want %q", k, entry.Error[k], v)
		}
	}

	buf.Reset()
	logger.Warn("bad input", "error", Newf(CategoryCLI, "unexpected argument %q", "x"))
	if strings.Contains(buf.String(), `"code"`) {
		t.Errorf("uncoded error should omit code: %s", buf.String())
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("P100").
		WithDetail("catalog endpoint returned status 503").
		WithSuggestion("Check catalog.url")

	out := err.Format()
	for _, want := range []string{
		"ERROR P100: Catalog fetch failed",
		"catalog endpoint returned status 503",
		"Hint: Check catalog.url",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != "P100: Catalog fetch failed" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("P140").Wrap(fmt.Errorf("line 3"))

	var v map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &v); e != nil {
		t.Fatalf("FormatJSON not valid JSON: %v", e)
	}
	if v["code"] != "P140" || v["category"] != "config" || v["cause"] != "line 3" {
		t.Errorf("FormatJSON = %v", v)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}

func TestRegistryCodes(t *testing.T) {
	codes := GetAllCodes()
	if !sort.StringsAreSorted(codes) {
		t.Errorf("GetAllCodes not sorted: %v", codes)
	}
	if _, ok := GetTemplate("P999"); ok {
		t.Error("GetTemplate(P999) should not be found")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}
}
