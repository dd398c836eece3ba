// Package templates holds the page and partial components of the dashboard.
//
// Components are templ.Component values so handlers render them the same way
// whether they are full pages or fragments.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// html writes markup and remembers the first write error.
type html struct {
	w   io.Writer
	err error
}

func newHTML(w io.Writer) *html {
	return &html{w: w}
}

// raw writes trusted markup.
func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// rawf writes trusted markup built from a format string. Arguments must
// already be escaped.
func (h *html) rawf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

// text writes escaped text, also safe inside double-quoted attributes.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// child renders a nested component.
func (h *html) child(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// esc is shorthand for templ.EscapeString.
func esc(s string) string {
	return templ.EscapeString(s)
}
