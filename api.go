// Package wsscope provides connection scope for graphql over websocket servers
//
// # Usage
//
// Every HTTP request (plain or websocket upgrade) is described by a scope: a mapping holding connection metadata,
// such as headers, path, query string, client and server addresses. Scope is created once per request with
// FromRequest or by the Handler middleware, and is available to downstream code with ContextScope.
//
// Operations started within the same connection derive their own scope with Scope.Operation, holding
// operation-specific values, while falling back to the connection scope for everything else. Scope methods are safe
// for concurrent use; the mapping returned by Scope.Map is not.
//
// Scope also provides helpers usually found on request objects: Meta dictionary, FullPath, AbsoluteURI and Host,
// the latter validating requested host against Settings.AllowedHosts.
package wsscope

// WebsocketSubprotocolGraphqlWS websocket subprotocol expected by subscriptions-transport-ws implementations
const WebsocketSubprotocolGraphqlWS = "graphql-ws"

// WebsocketSubprotocolGraphqlTransportWS websocket subprotocol expected by graphql-ws implementations
const WebsocketSubprotocolGraphqlTransportWS = "graphql-transport-ws"

// Well-known scope keys
const (
	KeyType          = "type"
	KeyScheme        = "scheme"
	KeyMethod        = "method"
	KeyHTTPVersion   = "http_version"
	KeyPath          = "path"
	KeyRawPath       = "raw_path"
	KeyRootPath      = "root_path"
	KeyQueryString   = "query_string"
	KeyHeaders       = "headers"
	KeyClient        = "client"
	KeyServer        = "server"
	KeySubprotocols  = "subprotocols"
	KeySubprotocol   = "subprotocol"
	KeyChannelsScope = "channels_scope"
	KeyMeta          = "META"
)

// Scope types
const (
	TypeHTTP      = "http"
	TypeWebsocket = "websocket"
)

// Address host and port pair, used for client and server scope entries
type Address struct {
	Host string
	Port int
}
