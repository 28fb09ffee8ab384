// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"reflect"

	"github.com/CloudyKit/jet/v6"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/internal/server/urls"
)

//go:embed templates/*.jet.html
var templateFS embed.FS

// TC is a simple type to carry template context.
type TC map[string]any

// views holds all the views (templates).
var views *jet.Set

// catalog returns a template set with every embedded template.
func catalog() *jet.Set {
	loader := jet.NewInMemLoader()
	files, _ := fs.Glob(templateFS, "templates/*.jet.html")
	for _, name := range files {
		b, err := templateFS.ReadFile(name)
		if err != nil {
			panic(err)
		}
		loader.Set("/"+path.Base(name), string(b))
	}

	options := []jet.Option{}
	if configs.Config.Main.DevMode {
		options = append(options, jet.InDevelopmentMode())
	}
	return jet.NewSet(loader, options...)
}

// initTemplates loads the templates and adds global functions to the views.
func initTemplates() {
	views = catalog()

	views.AddGlobal("version", configs.Version())
	views.AddGlobal("formats", formatNames())
	views.AddGlobal("statusText", http.StatusText)
	views.AddGlobalFunc("urlFor", func(args jet.Arguments) reflect.Value {
		parts := make([]string, args.NumOfArguments())
		for i := range args.NumOfArguments() {
			parts[i] = fmt.Sprintf("%v", args.Get(i))
		}

		r := args.Runtime().Resolve("request").Interface().(*http.Request)
		return reflect.ValueOf(urls.PathOnly(urls.AbsoluteURL(r, parts...)))
	})
}

// RenderTemplate yields an HTML response using the given template and context.
func RenderTemplate(w http.ResponseWriter, r *http.Request,
	status int, name string, ctx TC,
) {
	t, err := views.GetTemplate(name)
	if err != nil {
		Err(w, r, err)
		return
	}

	if w.Header().Get("content-type") == "" {
		w.Header().Set("content-type", "text/html; charset=utf-8")
	}
	if status >= 100 {
		w.WriteHeader(status)
	}

	if err = t.Execute(w, TemplateVars(r), ctx); err != nil {
		panic(err)
	}
}

// renderErrorPage renders a template after the status was sent.
func renderErrorPage(w http.ResponseWriter, r *http.Request, name string, ctx TC) {
	RenderTemplate(w, r, 0, name, ctx)
}

// TemplateVars returns the default variables set for a template
// in the request's context.
func TemplateVars(r *http.Request) jet.VarMap {
	cspNonce, _ := getCSPNonce(r.Context())

	return make(jet.VarMap).
		Set("basePath", urls.Prefix()).
		Set("currentPath", urls.CurrentPath(r)).
		Set("request", r).
		Set("cspNonce", cspNonce).
		Set("defaultFormat", string(defaultFormat()))
}
