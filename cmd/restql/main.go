// restql exposes configured REST endpoints and serves each of them by
// forwarding a persisted query to a GraphQL service.
//
// Every endpoint in the configuration maps an HTTP method and path to a
// persisted query id. Path segments, query parameters and JSON body fields
// are coerced to the declared kinds and sent upstream as GraphQL variables;
// the GraphQL response is relayed back with its status reconciled.
//
// Usage:
//
//	# Serve with ./config.yaml
//	restql
//
//	# Serve with a custom configuration file
//	restql --config /etc/restql/config.yaml
//
//	# Check a configuration and list its routes
//	restql validate -c config.yaml
//
//	# Print the JSON Schema of the configuration file
//	restql config-schema
//
//	# Show version information
//	restql version
package main

import "os"

func main() {
	os.Exit(Execute())
}
