// Package config provides configuration parsing for paintd.
//
// The configuration is stored in paintd.json by default; .yaml, .yml and
// .toml files are accepted too and are selected by extension.
//
// # Configuration File Structure
//
//	{
//	  "listen": ":8080",
//	  "catalog": {
//	    "source": "http",
//	    "url": "https://7tv.io/v2/cosmetics",
//	    "userIdentifier": "login",
//	    "refresh": "10m",
//	    "timeout": "30s"
//	  },
//	  "events": {
//	    "enabled": true,
//	    "url": "wss://events.example/v1"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// Durations are Go duration strings. Empty fields take the defaults from
// New.
//
// # Usage
//
//	cfg, err := config.LoadFile("paintd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Listen)
package config
