package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Gradebook API
	APIBaseURL string
	APIToken   string

	// Listing
	PageSize     int
	StatusFilter string

	// Where delivered exports land
	DownloadDir string

	// Optional SFTP drop for delivered exports
	SFTPHost      string
	SFTPPort      int
	SFTPUser      string
	SFTPPass      string
	SFTPRemoteDir string
}

func Load() Config {
	return Config{
		APIBaseURL: getenv("GRADEBOOK_API_URL", "http://localhost:8000/api"),
		APIToken:   os.Getenv("GRADEBOOK_API_TOKEN"),

		PageSize:     getenvInt("GRADEBOOK_PAGE_SIZE", 20),
		StatusFilter: os.Getenv("GRADEBOOK_STATUS_FILTER"),

		DownloadDir: getenv("GRADEBOOK_DOWNLOAD_DIR", "downloads"),

		SFTPHost:      os.Getenv("SFTP_HOST"),
		SFTPPort:      getenvInt("SFTP_PORT", 22),
		SFTPUser:      os.Getenv("SFTP_USER"),
		SFTPPass:      os.Getenv("SFTP_PASS"),
		SFTPRemoteDir: getenv("SFTP_REMOTE_DIR", "/"),
	}
}

// SFTPEnabled reports whether an SFTP drop target is configured.
func (c Config) SFTPEnabled() bool {
	return c.SFTPHost != "" && c.SFTPUser != ""
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
