// Package apidocs 内嵌的 OpenAPI 文档及其浏览页面
package apidocs

import (
	"bytes"
	"fmt"
	"github.com/labstack/echo/v4"
	"html/template"
	"net/http"
	"path"
)

type Opts func(*config)

type config struct {
	// SpecURL 文档 JSON 的地址
	SpecURL string
	// 返回 false 时响应 403
	Authorizer func(*http.Request) bool
}

// WithAuthorizer 限制文档的访问
func WithAuthorizer(fn func(*http.Request) bool) Opts {
	return func(cfg *config) {
		cfg.Authorizer = fn
	}
}

func renderPage(cfg *config) (string, error) {
	tmpl, err := template.New("apidoc").Parse(pageTemplate)
	if err != nil {
		return "", fmt.Errorf("parse page template: %w", err)
	}
	buf := bytes.NewBuffer(nil)
	if err := tmpl.Execute(buf, cfg); err != nil {
		return "", fmt.Errorf("render page template: %w", err)
	}
	return buf.String(), nil
}

// Doc 在 basePath/apidocs 提供文档页面，在 basePath/apispec.json 提供文档 JSON ，
// 访问 basePath 本身会被重定向到文档页面
func Doc(basePath string, apiJSON []byte, opts ...Opts) (echo.MiddlewareFunc, error) {
	cfg := &config{
		SpecURL: path.Join(basePath, "apispec.json"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	docPath := path.Join(basePath, "apidocs")
	uiHTML, err := renderPage(cfg)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			if reqPath != basePath && reqPath != docPath && reqPath != cfg.SpecURL {
				return next(c)
			}

			if cfg.Authorizer != nil && !cfg.Authorizer(c.Request()) {
				return c.String(http.StatusForbidden, http.StatusText(http.StatusForbidden))
			}

			switch reqPath {
			case docPath:
				return c.HTML(http.StatusOK, uiHTML)
			case cfg.SpecURL:
				return c.JSONBlob(http.StatusOK, apiJSON)
			default:
				return c.Redirect(http.StatusFound, docPath)
			}
		}
	}, nil
}

const pageTemplate = `
<!DOCTYPE html>
<html lang="en">
  <head>
    <title>API documentation</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>

  <body>
    <script id="api-reference" data-url="{{ .SpecURL }}"></script>

    <script src="https://cdnjs.cloudflare.com/ajax/libs/scalar-api-reference/1.25.99/standalone.min.js" integrity="sha512-ai3lOYZ5efNXMYwnqhz0mnCaImbqfwLE1VCx9Y9nhB3OJX4/uegjIAoQtJHy3SILHp/gS1OlPCIeNFPZT5i2WQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </body>
</html>`
