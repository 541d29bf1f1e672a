// Package msgpackhttp decodes and encodes MessagePack bodies inside net/http
// handlers. Inbound bodies are accumulated chunk by chunk under a byte budget
// and decoded only after the stream ends; outbound values are encoded in one
// shot with a compact (positional) or named (map) struct layout.
//
// Components:
//   - Message[T]: single-use accumulator. Checks Content-Type, rejects an
//     oversized Content-Length early, then bounds every chunk it reads.
//   - Gateway: resolves the effective budget (request-scoped Config, then the
//     Gateway's Config, then DefaultLimit), runs a Message and maps failures to
//     HTTP statuses. Also writes MessagePack responses.
//   - Config: mutable limit holder; attach per route with Middleware or
//     WithConfig.
//
// Statuses:
//
//	Overflow                                  -> 413
//	ContentType, Deserialize, Serialize, Payload -> 400
//
// Usage:
//
//	gw := msgpackhttp.New(msgpackhttp.Options{Config: msgpackhttp.NewConfig().Limit(64 << 10)})
//
//	func create(w http.ResponseWriter, r *http.Request) {
//	    in, ok := msgpackhttp.Bind[User](gw, w, r)
//	    if !ok {
//	        return
//	    }
//	    _ = msgpackhttp.Respond(gw, w, http.StatusCreated, in.Value)
//	}
package msgpackhttp
