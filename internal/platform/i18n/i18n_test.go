package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		value  string
		want   string
		wantOK bool
	}{
		{value: "en-US", want: "en-US", wantOK: true},
		{value: "pt-BR", want: "pt-BR", wantOK: true},
		{value: "pt", want: "pt-BR", wantOK: true},
		{value: " en ", want: "en-US", wantOK: true},
		{value: "ja", wantOK: false},
		{value: "", wantOK: false},
		{value: "not a tag!", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			got, ok := ParseTag(tc.value)
			if ok != tc.wantOK {
				t.Fatalf("ParseTag(%q) ok = %v, want %v", tc.value, ok, tc.wantOK)
			}
			if ok && got.String() != tc.want {
				t.Fatalf("ParseTag(%q) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}

func TestMatchTagsFallsBackToDefault(t *testing.T) {
	if got := MatchTags(nil); got != DefaultTag() {
		t.Fatalf("MatchTags(nil) = %s, want default", got)
	}
	if got := MatchTags([]language.Tag{language.Portuguese}); got.String() != "pt-BR" {
		t.Fatalf("MatchTags(pt) = %s, want pt-BR", got)
	}
}

func TestSupportedTagsReturnsCopy(t *testing.T) {
	tags := SupportedTags()
	tags[0] = language.Japanese
	if SupportedTags()[0] == language.Japanese {
		t.Fatal("SupportedTags must not expose internal slice")
	}
}
