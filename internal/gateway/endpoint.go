// Package gateway is the typed client for the mobile money gateway API. It
// builds request payloads, sends them through a Transport and turns the
// gateway's JSON answers into typed results.
package gateway

import (
	"net/http"
	"net/url"
	"strings"
)

// Endpoint is one gateway operation.
type Endpoint struct {
	Name   string
	Method string
	Path   string
}

var (
	EndpointPredictProvider = Endpoint{Name: "predict_provider", Method: http.MethodPost, Path: "/predict-provider"}
	EndpointPaymentPage     = Endpoint{Name: "payment_page", Method: http.MethodPost, Path: "/paymentpage"}
	EndpointInitiateDeposit = Endpoint{Name: "initiate_deposit", Method: http.MethodPost, Path: "/deposits"}
	EndpointDepositStatus   = Endpoint{Name: "deposit_status", Method: http.MethodGet, Path: "/deposits/{depositId}"}
)

// Endpoints returns every endpoint the client calls.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointPredictProvider, EndpointPaymentPage, EndpointInitiateDeposit, EndpointDepositStatus}
}

// BuildPath substitutes {name} placeholders with path-escaped values.
func (e Endpoint) BuildPath(params map[string]string) string {
	path := e.Path
	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	return path
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
