package notify

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short stays", in: "привет", n: 10, want: "привет"},
		{name: "exact stays", in: "abcde", n: 5, want: "abcde"},
		{name: "long trimmed", in: "abcdefgh", n: 5, want: "abcd…"},
		{name: "multibyte trimmed", in: "приветмир", n: 7, want: "привет…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
