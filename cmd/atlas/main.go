// Atlas gives a web map application offline resilience and performant
// tile delivery.
//
// It runs as two cooperating servers:
//   - an edge proxy that classifies geospatial API requests, resolves
//     their region, injects the upstream credential, and rewrites
//     responses so the credential never reaches clients
//   - an offline gateway that fronts the application origin with
//     versioned cache stores and per-resource caching strategies
//
// Usage:
//
//	# Start the edge proxy with default configuration
//	atlas proxy
//
//	# Start the offline gateway with a custom configuration file
//	atlas gateway --config /etc/atlas/config.yaml
//
//	# Show version information
//	atlas version
package main

func main() {
	Execute()
}
