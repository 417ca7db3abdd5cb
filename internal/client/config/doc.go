// Package config loads runtime configuration for the rentable client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults). The assistant API key
//     default can be injected with -ldflags.
//  2. Optional JSON or YAML file (see parseFile) selected via -c or -config.
//  3. Optional dotenv file selected via -env, then RENTABLE_* environment
//     variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-d string   session database file
//	-s string   public storage base URL
//	-l string   log level
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_path": "rentable.db",
//	  "storage_public_url": "http://127.0.0.1:9000",
//	  "assistant_model": "gemini-2.5-flash"
//	}
package config
