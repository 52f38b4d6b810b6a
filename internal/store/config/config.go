package config

const (
	DriverPostgres = "postgres"
	DriverD1       = "d1"
)

type Config struct {
	Driver string
	DBDsn  string

	D1AccountID  string
	D1DatabaseID string
	D1APIToken   string
	D1BaseURL    string

	// Workers - параллельность TransactionUpsertBatch
	Workers int
}
