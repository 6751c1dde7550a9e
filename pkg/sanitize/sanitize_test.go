package sanitize

import "testing"

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "プレーンテキストはそのまま", input: "Add dark mode", want: "Add dark mode"},
		{name: "タグを除去する", input: "<b>Dark</b> mode", want: "Dark mode"},
		{name: "scriptは中身ごと除去する", input: "<script>alert(1)</script>Hello", want: "Hello"},
		{name: "属性付きリンクも除去する", input: `<a href="javascript:x" onclick="y">link</a>`, want: "link"},
		{name: "記号はエスケープせずに残す", input: `Tom & Jerry "quoted"`, want: `Tom & Jerry "quoted"`},
		{name: "前後の空白を除去する", input: "  spaced  ", want: "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptionalText(t *testing.T) {
	t.Parallel()

	if got := OptionalText(nil); got != nil {
		t.Errorf("OptionalText(nil) = %v, want nil", *got)
	}
	in := "<i>desc</i>"
	if got := OptionalText(&in); got == nil || *got != "desc" {
		t.Errorf("OptionalText(%q) = %v, want %q", in, got, "desc")
	}
}
