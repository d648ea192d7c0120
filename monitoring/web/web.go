// Package web holds the dashboard page of the monitoring server.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

// AssetDirEnv names the environment variable that points the server at a
// directory of dashboard files to serve instead of the embedded ones. Set it
// to edit the dashboard without rebuilding the binary.
const AssetDirEnv = "GEMMCACHE_WEB_DIR"

//go:embed dist/*
var dashboard embed.FS

// GetAssets returns the files of the dashboard.
func GetAssets() http.FileSystem {
	if dir, ok := os.LookupEnv(AssetDirEnv); ok && dir != "" {
		fmt.Printf("Serving the dashboard from %s\n", dir)
		return http.Dir(dir)
	}

	dist, err := fs.Sub(dashboard, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(dist)
}
