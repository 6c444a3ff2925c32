// Package config provides configuration parsing for reactor projects.
//
// The configuration is stored in reactor.json or reactor.yaml at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	name: counter
//	dev:
//	  host: localhost
//	  port: 3000
//	metrics:
//	  enabled: true
//	  namespace: reactor
//	tracing:
//	  enabled: false
//	snapshot:
//	  bucket: my-bucket
//	  prefix: snapshots/
//	  region: us-east-1
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.DevAddress())
package config
