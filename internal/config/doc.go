// Package config loads hoard's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/hoard/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. HOARD_SERVER_URL and HOARD_LOG_LEVEL override whatever the file says
//
// # TOML Format
//
//	server_url  = "https://hoarder.example.com"
//	auth_header = "x-api-key"        # or "bearer"
//	timeout     = "15s"
//	page_size   = 20                 # clamped to 1..100
//	log_dir     = "~/.local/share/hoard/logs"
//	log_level   = "info"
//	pretty_log  = false
//	bridge_addr = "127.0.0.1:7611"
//
// All fields are optional. The API key is deliberately absent: it is only
// ever held in memory after the server has accepted it.
//
// # Error Handling
//
// A missing file is not an error. An unreadable file, invalid TOML, an
// unknown auth_header or an unparsable timeout are reported as
// "parse config: ..." errors so a typo never silently changes behavior.
package config
