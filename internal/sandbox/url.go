package sandbox

import (
	"net/url"
	"strings"

	"github.com/dop251/goja"
)

// installURL defines a minimal WHATWG-style URL constructor.
func installURL(vm *goja.Runtime) error {
	return vm.Set("URL", func(call goja.ConstructorCall) *goja.Object {
		raw := call.Argument(0).String()

		u, err := url.Parse(strings.TrimSpace(raw))
		if err == nil && len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1)) {
			var base *url.URL
			if base, err = url.Parse(call.Argument(1).String()); err == nil {
				u = base.ResolveReference(u)
			}
		}
		if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "" && u.Scheme != "file") {
			panic(vm.NewTypeError("Invalid URL: %s", raw))
		}
		u.Host = strings.ToLower(u.Host)

		for k, v := range urlFields(u) {
			if setErr := call.This.Set(k, v); setErr != nil {
				panic(vm.NewGoError(setErr))
			}
		}
		href := u.String()
		if setErr := call.This.Set("toString", func(goja.FunctionCall) goja.Value {
			return vm.ToValue(href)
		}); setErr != nil {
			panic(vm.NewGoError(setErr))
		}
		return nil
	})
}

// urlFields maps a parsed URL onto the JS URL property names.
func urlFields(u *url.URL) map[string]string {
	scheme := strings.ToLower(u.Scheme)
	host := u.Host

	pathname := u.EscapedPath()
	if pathname == "" && u.Host != "" {
		pathname = "/"
	}

	search := ""
	if u.RawQuery != "" {
		search = "?" + u.RawQuery
	}
	hash := ""
	if u.Fragment != "" {
		hash = "#" + u.EscapedFragment()
	}

	origin := "null"
	if host != "" {
		origin = scheme + "://" + host
	}

	return map[string]string{
		"href":     u.String(),
		"protocol": scheme + ":",
		"host":     host,
		"hostname": strings.ToLower(u.Hostname()),
		"port":     u.Port(),
		"pathname": pathname,
		"search":   search,
		"hash":     hash,
		"origin":   origin,
	}
}
