// Package gateway translates REST calls into GraphQL persisted query
// requests and GraphQL responses back into REST responses.
//
// # Pipeline
//
// Every configured endpoint is registered in a RouteTable under
// "{METHOD} {path_prefix}{path}". A matched request runs through:
//
//  1. Resolve: query parameters, then path arguments, then body parameters
//     are coerced to their declared kind and merged into the GraphQL
//     variables. Later sources win on a name collision (body > path > query).
//  2. NewPersistedQueryRequest: the variables and the persisted query id are
//     encoded as {"variables":...,"extensions":{"persistedQuery":{...}}}.
//  3. Client.Do: a single POST to the GraphQL service carrying the inbound
//     headers minus Host. There are no retries.
//  4. Reconcile: the upstream status passes through, except that a 200 with
//     a non-empty errors list becomes 500, or 206 when real data accompanies
//     the errors.
//
// # Errors
//
// Failures are rendered as {"errors":[{"message":...}],"data":null}:
//
//	MissingParameterError    400  Missing required parameter: <from>
//	ParameterCoercionError   400  the parse failure, verbatim
//	InvalidBodyError         400  body is not a JSON object
//	UpstreamTransportError   500  the transport failure
//	UpstreamDecodeError      500  the body is not a GraphQL envelope
//
// A request that fails parameter resolution never reaches the GraphQL
// service.
package gateway
