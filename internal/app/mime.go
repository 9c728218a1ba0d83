package app

import (
	"log"
	"mime"
)

// Some minimal container images ship without /etc/mime.types, which
// leaves stylesheets served as text/plain and ignored by browsers.
func init() {
	if mime.TypeByExtension(".css") != "" {
		return
	}
	if err := mime.AddExtensionType(".css", "text/css; charset=utf-8"); err != nil {
		log.Printf("app: register css mime type: %v", err)
	}
}
