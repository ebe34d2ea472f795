package subtitles

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"html tags", "<i>Hello</i> <b>world</b>", "hello world"},
		{"webvtt styling", "<c.yellow>Look out!</c>", "look out!"},
		{"bracketed description", "[music playing] Let's go", "let's go"},
		{"parenthesized description", "(laughter) That was funny", "that was funny"},
		{"speaker label", "JOHN: We need to leave", "we need to leave"},
		{"music symbols", "♪ la la la ♪", "la la la"},
		{"ellipsis collapse", "Wait... what", "wait. what"},
		{"dash collapse", "I -- I don't know", "i - i don't know"},
		{"whitespace collapse", "too   many    spaces", "too many spaces"},
		{"empty", "", ""},
		{"only annotation", "[door slams]", ""},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Fatalf("%s: CleanText(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
