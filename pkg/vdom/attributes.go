package vdom

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Prop sets an arbitrary prop. Values are kept as given, so component props
// may carry any Go value.
func Prop(key string, value any) Attr { return attr(key, value) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining the non-empty classes with spaces.
func Class(classes ...string) Attr {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return attr("class", strings.Join(parts, " "))
}

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute.
func Value(v any) Attr { return attr("value", fmt.Sprint(v)) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Title sets the title attribute.
func Title(title string) Attr { return attr("title", title) }

// SortedKeys returns the keys of p in lexical order.
func SortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[string])
	return keys
}
