package config

type Config struct {
	JournalsURL   string
	AccessToken   string
	Cookie        string
	PageSize      int
	MaxPages      int
	DOMExportPath string
}
