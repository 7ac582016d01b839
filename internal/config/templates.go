package config

import (
	"fmt"
	"os"
)

func Template() string {
	return hostsTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(hostsTemplate), 0o600)
}

const hostsTemplate = `[transport]
dial_timeout = "5s"
dial_retry = "250ms"
dial_max_retries = 10
# "0s" disables the pause before a download request
subscribe_settle = "100ms"
chunk_size = 1048576

[[hosts]]
name = "localhost"
mode = "local"
platform = "auto"

[[hosts]]
name = "web-01"
mode = "remote"
hostname = "web-01.example.net"
api_port = 7101
upload_port = 7102
download_port = 7103
`
