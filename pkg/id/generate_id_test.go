package id

import (
	"encoding/hex"
	"regexp"
	"strings"
	"testing"
	"time"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	// length
	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	// lowercase hex only (no separators/prefixes)
	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	// decodes to exactly 16 bytes
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewID32_NoUppercaseOrHyphen(t *testing.T) {
	id := NewID32()
	for _, r := range id {
		if r >= 'A' && r <= 'Z' {
			t.Fatalf("found uppercase letter in id: %q", id)
		}
		if r == '-' {
			t.Fatalf("found hyphen in id: %q", id)
		}
	}
}

var rePRN = regexp.MustCompile(`^PRN-\d{8}-[0-9A-F]{10}$`)

func TestNewPaymentReference_Format(t *testing.T) {
	at := time.Date(2025, 3, 14, 23, 30, 0, 0, time.FixedZone("PHT", 8*3600))
	got := NewPaymentReference(at)
	if !rePRN.MatchString(got) {
		t.Fatalf("reference %q does not match %s", got, rePRN)
	}
	// date part is UTC
	if !strings.HasPrefix(got, "PRN-20250314-") {
		t.Fatalf("reference %q should carry the UTC date 20250314", got)
	}
}

func TestNewPaymentReference_Uniqueness(t *testing.T) {
	at := time.Now()
	const n = 500
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		ref := NewPaymentReference(at)
		if _, ok := seen[ref]; ok {
			t.Fatalf("duplicate reference after %d iterations: %q", i, ref)
		}
		seen[ref] = struct{}{}
	}
}

func TestRequestNumber(t *testing.T) {
	got := RequestNumber(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), 42)
	if got != "REQ-2025-000042" {
		t.Fatalf("RequestNumber = %q, want REQ-2025-000042", got)
	}
}
