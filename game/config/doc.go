// Package config provides configuration management for the ssp client.
//
// Settings are layered, later sources overriding earlier ones:
//   - built-in defaults (Default)
//   - a YAML file passed with --config
//   - SSP_* environment variables (a .env file is loaded first by main)
//   - command line flags, applied by main
//
// Configuration Format:
//
//	api_base_url: http://localhost:8080/api
//	request_timeout: 10s
//	storage: bolt          # file, bolt or memory
//	storage_path: ./ssp.db
//	host: 0.0.0.0
//	port: 8090
//	static_dir: ./static
//	ngrok:
//	  enabled: true
//	  domain: my-board.ngrok.app
//	debug: false
//
// Environment variables use the upper-cased key with the SSP_ prefix, for
// example SSP_API_BASE_URL or SSP_NGROK_AUTHTOKEN.
//
// Usage:
//
//	cfg, err := config.Load(path)
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package config
