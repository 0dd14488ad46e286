package parser

import (
	"strings"
	"testing"
)

func TestService_ToHTML(t *testing.T) {
	svc := NewService()

	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "emphasis",
			input:    "**nice** shot",
			contains: []string{"<strong>nice</strong>"},
		},
		{
			name:        "script stripped",
			input:       "hi <script>alert(1)</script>",
			notContains: []string{"<script", "alert(1)</script>"},
		},
		{
			name:        "javascript link removed",
			input:       "[click](javascript:alert(1))",
			notContains: []string{"javascript:"},
		},
		{
			name:     "external links are nofollow",
			input:    "see https://example.com",
			contains: []string{`href="https://example.com"`, `rel="nofollow noopener"`, `target="_blank"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML(%q) = %q, 缺少 %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.notContains {
				if strings.Contains(got, bad) {
					t.Errorf("ToHTML(%q) = %q, 不应包含 %q", tt.input, got, bad)
				}
			}
		})
	}
}
