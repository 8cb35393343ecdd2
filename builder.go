package exaction

import "github.com/solheim-labs/exaction/internal/secretheaders"

// Builder constructs EndpointRequest values. It exposes exactly the two
// constructors named in §4.4: Get and Post. Neither auto-inserts a
// Content-Type header — signers that need one add it themselves, because
// the signing input must be fixed before any framework-added header
// pollutes the header set.
type Builder struct{}

// NewBuilder returns a Builder. Stateless; kept as a type for symmetry
// with the per-exchange signer types and to give call sites a natural
// place to hang future shared defaults.
func NewBuilder() Builder { return Builder{} }

// Get builds a GET EndpointRequest. relativeStubPath may be empty.
func (Builder) Get(baseURL, relativeStubPath, relativeResourcePath string, params []KV, headers *secretheaders.Headers) *EndpointRequest {
	if headers == nil {
		headers = secretheaders.New()
	}
	return &EndpointRequest{
		method:               MethodGET,
		baseURL:              baseURL,
		stubPath:             relativeStubPath,
		relativeResourcePath: relativeResourcePath,
		params:               params,
		headers:              headers,
	}
}

// Post builds a POST EndpointRequest. relativeStubPath and body may be
// empty/nil; an empty body yields BodyJSON() == "" and no synthesized
// Content-Type.
func (Builder) Post(baseURL, relativeStubPath, relativeResourcePath string, body []KV, headers *secretheaders.Headers) *EndpointRequest {
	if headers == nil {
		headers = secretheaders.New()
	}
	return &EndpointRequest{
		method:               MethodPOST,
		baseURL:              baseURL,
		stubPath:             relativeStubPath,
		relativeResourcePath: relativeResourcePath,
		body:                 body,
		headers:              headers,
	}
}
