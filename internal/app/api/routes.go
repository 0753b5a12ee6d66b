//
// Copyright 2019 Insolar Technologies GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package api

import (
	"fmt"
	"net/http"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/events)
	GetEvents(ctx echo.Context, params GetEventsParams) error
	// (GET /api/registry/{mint})
	GetRegistry(ctx echo.Context, mint string) error
	// (GET /api/sandbox)
	GetSandbox(ctx echo.Context) error
	// (POST /api/transfers)
	PostTransfers(ctx echo.Context) error
	// (GET /api/whale)
	GetWhale(ctx echo.Context) error
	// (GET /api/whale/{mint})
	GetWhaleByMint(ctx echo.Context, mint string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) GetEvents(ctx echo.Context) error {
	var params GetEventsParams
	err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return w.Handler.GetEvents(ctx, params)
}

func (w *ServerInterfaceWrapper) GetRegistry(ctx echo.Context) error {
	var mint string
	err := runtime.BindStyledParameter("simple", false, "mint", ctx.Param("mint"), &mint)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter mint: %s", err))
	}
	return w.Handler.GetRegistry(ctx, mint)
}

func (w *ServerInterfaceWrapper) GetSandbox(ctx echo.Context) error {
	return w.Handler.GetSandbox(ctx)
}

func (w *ServerInterfaceWrapper) PostTransfers(ctx echo.Context) error {
	return w.Handler.PostTransfers(ctx)
}

func (w *ServerInterfaceWrapper) GetWhale(ctx echo.Context) error {
	return w.Handler.GetWhale(ctx)
}

func (w *ServerInterfaceWrapper) GetWhaleByMint(ctx echo.Context) error {
	var mint string
	err := runtime.BindStyledParameter("simple", false, "mint", ctx.Param("mint"), &mint)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter mint: %s", err))
	}
	return w.Handler.GetWhaleByMint(ctx, mint)
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET("/api/events", wrapper.GetEvents)
	router.GET("/api/registry/:mint", wrapper.GetRegistry)
	router.GET("/api/sandbox", wrapper.GetSandbox)
	router.POST("/api/transfers", wrapper.PostTransfers)
	router.GET("/api/whale", wrapper.GetWhale)
	router.GET("/api/whale/:mint", wrapper.GetWhaleByMint)
}
