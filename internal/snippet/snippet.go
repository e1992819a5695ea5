// Package snippet renders illustrative SDK usage for a toggle key.
// The snippets are static text and are not tied to evaluation.
package snippet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Lang is an SDK language id.
type Lang string

const (
	JS     Lang = "js"
	Java   Lang = "java"
	Go     Lang = "go"
	CSharp Lang = "csharp"
)

// Snippet is one rendered example.
type Snippet struct {
	Lang  Lang   `json:"lang"`
	Label string `json:"label"`
	Code  string `json:"code"`
}

var labels = map[Lang]string{
	JS:     "JavaScript",
	Java:   "Java",
	Go:     "Go",
	CSharp: "C#",
}

var templates = map[Lang]*template.Template{
	JS: template.Must(template.New("js").Parse(`import { ApolloClient } from '@apollo/sdk-js';

const client = new ApolloClient({ apiKey: 'YOUR_KEY' });
const isEnabled = await client.isEnabled({{.Key}}, {
  userId: 'user_123',
  city: 'Beijing'
});

if (isEnabled) {
  // Execute grayscale feature logic
}`)),
	Java: template.Must(template.New("java").Parse(`ApolloClient client = ApolloClient.builder()
    .apiKey("YOUR_KEY")
    .build();

Context context = Context.builder()
    .add("user_id", "user_123")
    .add("city", "Beijing")
    .build();

if (client.isEnabled({{.Quoted}}, context)) {
    // New feature code
}`)),
	Go: template.Must(template.New("go").Parse(`package main

import (
	"context"

	"github.com/ricejson/apollo-sdk-go/client"
	"github.com/ricejson/apollo-sdk-go/model"
)

func main() {
	c := client.NewClient()
	user := model.NewUser().
		With("user_id", "123").
		With("city", "Beijing")

	allow, err := c.IsToggleAllowV2(context.Background(), {{.Quoted}}, "123", user)
	if err != nil {
		// handle error
	}
	if allow {
		// New feature code
	}
}
`)),
	CSharp: template.Must(template.New("csharp").Parse(`ApolloClient client = new(new ApolloOptions
{
    TogglesPath = Path.Combine(Environment.CurrentDirectory, "toggles")
});

var context = new ApolloContext("user_123")
    .Set("city", "Beijing");

if (client.IsToggleAllowed({{.Quoted}}, context))
{
    Console.WriteLine("is allow");
}`)),
}

// ErrUnknownLang is returned for a language without a template.
var ErrUnknownLang = errors.New("unsupported snippet language")

// Languages lists the supported languages in display order.
func Languages() []Lang {
	return []Lang{JS, Java, Go, CSharp}
}

// Render returns the snippet for lang with key substituted.
func Render(lang Lang, key string) (Snippet, error) {
	tmpl, ok := templates[lang]
	if !ok {
		return Snippet{}, fmt.Errorf("%w %q", ErrUnknownLang, lang)
	}

	data := struct {
		Key    string
		Quoted string
	}{
		Key:    jsString(key),
		Quoted: strconv.Quote(key),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Snippet{}, fmt.Errorf("render %s snippet: %w", lang, err)
	}
	return Snippet{Lang: lang, Label: labels[lang], Code: buf.String()}, nil
}

// RenderAll renders every language.
func RenderAll(key string) ([]Snippet, error) {
	out := make([]Snippet, 0, len(templates))
	for _, lang := range Languages() {
		s, err := Render(lang, key)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// jsString renders key as a single-quoted JS literal.
func jsString(key string) string {
	q := strconv.Quote(key)
	body := q[1 : len(q)-1]
	body = strings.ReplaceAll(body, `\"`, `"`)
	body = strings.ReplaceAll(body, `'`, `\'`)
	return "'" + body + "'"
}
