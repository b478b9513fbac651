// Package instance identifies the running worker replica for log
// correlation when several reconcile workers share one database.
package instance

import "os"

// GetID resolves the replica identifier. Deployments set WORKER_ID
// explicitly; containers fall back to their hostname.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "reconcile-0"
}
