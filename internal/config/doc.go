// Package config provides configuration parsing for the contactform server.
//
// The configuration is stored in contactform.json at the project root.
// Every field is optional; missing fields take the defaults from New.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "port": 3000,
//	  "host": "localhost",
//	  "server": {
//	    "readTimeout": "30s",
//	    "writeTimeout": "30s",
//	    "idleTimeout": "60s",
//	    "shutdownTimeout": "10s"
//	  },
//	  "live": {
//	    "path": "/live",
//	    "pingInterval": "30s",
//	    "maxMessageSize": 4096
//	  },
//	  "session": {
//	    "resumeWindow": "5m",
//	    "cookieName": "contactform_session"
//	  },
//	  "metrics": { "enabled": true, "path": "/metrics" },
//	  "tracing": { "enabled": true },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// The environment variables CONTACTFORM_PORT, CONTACTFORM_HOST and
// CONTACTFORM_LOG_LEVEL override the file.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
