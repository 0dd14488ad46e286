package idgen

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("NewID() 生成了重复的 ID: %s", a)
	}
	if !IsValidID(a) {
		t.Errorf("IsValidID(%q) = false", a)
	}
	if IsValidID("not-a-uuid") {
		t.Errorf("IsValidID 应拒绝非法 ID")
	}
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{name: "jpeg", filename: "IMG_0001.JPG", wantExt: "jpg"},
		{name: "webp", filename: "shot.webp", wantExt: "webp"},
		{name: "no extension", filename: "blob", wantExt: "jpg"},
		{name: "odd extension", filename: "x.j$g", wantExt: "jpg"},
	}

	pattern := regexp.MustCompile(`^u1/a1/1700000000123-[a-z0-9]{8,}\.[a-z0-9]+$`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ObjectKey("u1", "a1", tt.filename, now)
			if err != nil {
				t.Fatalf("ObjectKey() error = %v", err)
			}
			if !pattern.MatchString(key) {
				t.Errorf("ObjectKey() = %q, 不符合预期格式", key)
			}
			if !strings.HasSuffix(key, "."+tt.wantExt) {
				t.Errorf("ObjectKey() = %q, want ext %q", key, tt.wantExt)
			}
		})
	}
}

func TestRandomTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		tok, err := RandomToken()
		if err != nil {
			t.Fatalf("RandomToken() error = %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("RandomToken() 出现重复: %s", tok)
		}
		seen[tok] = struct{}{}
	}
}
