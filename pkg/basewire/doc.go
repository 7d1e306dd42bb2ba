// Package basewire defines the public API of the Basewire Go client:
// the Client interface and its per-resource sub-clients, the record and
// collection models, the filter/query builder, the error taxonomy, batch
// types, pagination helpers, interceptors, and the optional response cache.
//
// Construct clients with the bwclient package:
//
//	client, err := bwclient.New(ctx, &basewire.Config{Endpoint: "https://app.example.com"})
//
// Realtime subscriptions (SSE) are out of scope for this client.
package basewire
