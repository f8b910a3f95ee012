package wsscope

import (
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

func parseAddress(hostport string) (Address, bool) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return Address{}, false
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return Address{}, false
	}

	return Address{
		Host: host,
		Port: p,
	}, true
}

func requestHeaders(r *http.Request) [][2][]byte {
	names := make([]string, 0, len(r.Header))

	for name := range r.Header {
		names = append(names, name)
	}

	sort.Strings(names)

	headers := make([][2][]byte, 0, len(names)+1)

	if r.Host != "" {
		headers = append(headers, [2][]byte{[]byte("host"), []byte(r.Host)})
	}

	for _, name := range names {
		lower := strings.ToLower(name)

		if lower == "host" {
			continue
		}

		for _, value := range r.Header[name] {
			headers = append(headers, [2][]byte{[]byte(lower), []byte(value)})
		}
	}

	return headers
}

// NewRequestScope returns scope mapping describing provided HTTP request
func NewRequestScope(r *http.Request) map[string]interface{} {
	typ, scheme := TypeHTTP, "http"

	if websocket.IsWebSocketUpgrade(r) {
		typ, scheme = TypeWebsocket, "ws"
	}

	if r.TLS != nil {
		scheme += "s"
	}

	values := map[string]interface{}{
		KeyType:         typ,
		KeyScheme:       scheme,
		KeyMethod:       r.Method,
		KeyHTTPVersion:  strconv.Itoa(r.ProtoMajor) + "." + strconv.Itoa(r.ProtoMinor),
		KeyPath:         r.URL.Path,
		KeyRawPath:      []byte(r.URL.EscapedPath()),
		KeyRootPath:     "",
		KeyQueryString:  []byte(r.URL.RawQuery),
		KeyHeaders:      requestHeaders(r),
		KeySubprotocols: websocket.Subprotocols(r),
	}

	if client, ok := parseAddress(r.RemoteAddr); ok {
		values[KeyClient] = client
	}

	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if server, ok := parseAddress(addr.String()); ok {
			values[KeyServer] = server
		}
	}

	return values
}

// FromRequest returns new Scope describing provided HTTP request
func FromRequest(r *http.Request, settings Settings) *Scope {
	return New(NewRequestScope(r), settings)
}
