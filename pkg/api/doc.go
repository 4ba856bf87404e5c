// Package api serves read-only registry queries over HTTP.
package api
