/*
Package config loads and validates Burrow's YAML configuration.

The recognized options map one-to-one onto the engine's construction
knobs: queue strategy, bounded capacity, spill, drain-on-stop, the
worker set and the operational surface (metrics address, spool
directory, logging).

# Configuration File

	queue_strategy: adaptive        # mutex | lockfree | adaptive
	bounded_capacity: 0             # 0 = unbounded
	worker_drain_on_stop: true

	workers:
	  - name: realtime
	    primary: realtime
	  - name: batch
	    primary: batch
	    fallbacks: [realtime]
	  - name: background
	    primary: background
	    fallbacks: [realtime, batch]

	spill:
	  enabled: false
	  dir: /var/lib/burrow/spill
	  threshold_bytes: 65536
	  compress: true
	  compress_block_size: 65536
	  encrypt_password: ""

	spool_dir: /var/lib/burrow
	metrics_addr: ":9464"

	log:
	  level: info
	  json: true

# Usage

	cfg, err := config.Load("/etc/burrow/burrow.yaml")
	if err != nil {
		return err
	}
	// or start from config.Default() and override

# Integration Points

  - cmd/burrow: builds the pool, workers and router from a Config
  - pkg/types: strategy and priority parsing
*/
package config
