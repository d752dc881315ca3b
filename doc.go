// Package kaskade is a policy-driven request executor that routes logical
// operations between a local cache layer and a remote cloud layer:
//
//   - Four data policies: LocalOnly, CloudOnly, LocalFirst, CloudFirst
//   - Write-through mirroring: successful writes are replayed to the other layer
//   - Read-through fallback: GET reads fall back across layers on failure
//   - Per-request single-flight guard (re-entrant Execute is rejected, not queued)
//   - Pluggable auth strategies (static credentials or async providers)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - Layers are opaque pipelines behind one Execute contract
//   - Unsuccessful responses flow through policy logic as data; hard errors
//     propagate unchanged and never trigger fallback
//
// Typical usage:
//
//	client := kaskade.New(
//	    kaskade.WithAPIHost("api.example.com"),
//	    kaskade.WithLocalLayer(kaskade.NewMemoryLayer()),
//	    kaskade.WithCloudLayer(kaskade.NewHTTPLayer()),
//	)
//	req, err := client.NewRequest("GET", "/books",
//	    kaskade.WithDataPolicy(kaskade.CloudFirst),
//	)
//	resp, err := req.Execute(ctx)
//
// A CloudFirst GET that succeeds against the network is written back into the
// local layer as a PUT before Execute returns; if the network fails, the read
// is served from the local layer instead. Writes are only ever mirrored
// forward on success, never substituted by the other layer on failure.
package kaskade
