package templates

import (
	"bytes"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// messageMarkdown renders chat content. Raw HTML is omitted and dangerous
// link destinations are blanked because the renderer is not in unsafe mode.
var (
	messageMarkdown     goldmark.Markdown
	messageMarkdownOnce sync.Once
)

func chatMarkdown() goldmark.Markdown {
	messageMarkdownOnce.Do(func() {
		messageMarkdown = goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		)
	})
	return messageMarkdown
}

// markdownContent renders content as Markdown, falling back to escaped text.
func markdownContent(content string) templ.Component {
	if content == "" {
		return templ.NopComponent
	}
	var buf bytes.Buffer
	if err := chatMarkdown().Convert([]byte(content), &buf); err != nil {
		return templ.Raw(templ.EscapeString(content))
	}
	return templ.Raw(buf.String())
}
