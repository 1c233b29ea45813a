// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values (Default)
//	2. A YAML file (config.yaml, configs/config.yaml or DASH_CONFIG_FILE)
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables use the DASH_ prefix followed by the section and
// field name:
//
//	DASH_SERVER_PORT=8080
//	DASH_LOGGING_LEVEL=debug
//	DASH_DASHBOARD_SEED=7
//	DASH_DASHBOARD_MAX_UPLOAD_BYTES=1048576
//
// The merged configuration is validated with struct tags before use.
package config
