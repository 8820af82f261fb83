// Package config provides configuration management for restql.
//
// A configuration file declares the listener, the upstream GraphQL endpoint
// and the list of REST endpoints. Each endpoint names the persisted query it
// calls and the request parameters that become GraphQL variables.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Loading happens in two passes. The raw document is first checked against
// the JSON Schema reflected from Config (see Schema), which catches wrong
// types, unknown keys and bad enum values with precise locations. It is then
// decoded strictly and checked by Validate for the rules a schema cannot
// express: duplicate routes, path arguments that name no path segment and
// collisions with the gateway's own endpoints.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RESTQL_SECTION_FIELD:
//
//   - RESTQL_COMMON_LISTEN overrides common.listen
//   - RESTQL_COMMON_GRAPHQL_ENDPOINT overrides common.graphql_endpoint
//   - RESTQL_LOGGING_LEVEL overrides common.logging.level
//
// # Example Configuration
//
//	common:
//	  listen: "0.0.0.0:8080"
//	  graphql_endpoint: "http://localhost:4000/graphql"
//
//	endpoints:
//	  - path: /users/{id}
//	    pq_id: 5b1a0f3c...
//	    path_arguments:
//	      - from: id
//	        kind: INT
//	        required: true
//	  - path: /users
//	    method: POST
//	    pq_id: 9e2f...
//	    body_params:
//	      - from: name
//	        required: true
//	      - from: tags
//	        kind: ARRAY
//
// # Thread Safety
//
// A loaded Config is never mutated. The singleton accessors are safe for
// concurrent use.
package config
