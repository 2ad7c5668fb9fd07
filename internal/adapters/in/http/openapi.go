package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openAPIDocument []byte

var (
	loadOnce   sync.Once
	loadedDoc  *openapi3.T
	loadDocErr error
)

// OpenAPI returns the parsed and validated API document. It is loaded once.
func OpenAPI() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPIDocument)
		if err != nil {
			loadDocErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err = doc.Validate(context.Background()); err != nil {
			loadDocErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		loadedDoc = doc
	})
	return loadedDoc, loadDocErr
}

// swaggerDoc serves the API document to echo-swagger as JSON.
type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	doc, err := OpenAPI()
	if err != nil {
		return "{}"
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}

// requestValidator rejects requests that do not match the API document with
// 400 before any handler runs. Paths the document does not describe pass
// through to echo's own routing.
func requestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
					return next(c)
				}
				return badRequest(c, "invalid request")
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return badRequest(c, validationMessage(err))
			}
			return next(c)
		}
	}, nil
}

// validationMessage names what was wrong without echoing the submitted value,
// which may be a PIN or a token.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return "invalid request"
	}
	switch {
	case reqErr.Parameter != nil:
		return fmt.Sprintf("invalid %s parameter %q", reqErr.Parameter.In, reqErr.Parameter.Name)
	case reqErr.RequestBody != nil:
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) && len(schemaErr.JSONPointer()) > 0 {
			return fmt.Sprintf("invalid request body: field %q", schemaErr.JSONPointer()[0])
		}
		return "invalid request body"
	default:
		return http.StatusText(http.StatusBadRequest)
	}
}
