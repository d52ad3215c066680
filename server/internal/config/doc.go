// Package config loads the server-side configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort            port for the REST API and WebSocket hub (default 8080)
//   - LogLevel            debug | info | warn | error (default info)
//   - Upload.MaxBytes     request body cap for uploads (default 32 MiB)
//   - Cache.TTL           how long a processed upload stays cached (default 30m)
//   - Stream.Interval     WebSocket push interval (default 5s)
//   - Columns             source column names for times, coordinates and pattern
//   - Timestamps          extra layouts and the zone for offset-less timestamps
//   - Alerts              rules over upload summaries and webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, fn) re-loads the file on change; the server applies the
// new log level and alert rules without a restart.
package config
