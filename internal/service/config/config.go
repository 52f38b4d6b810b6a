package config

type Config struct {
	// TimeZone задает бизнес-день (occurredDate, диапазоны дат)
	TimeZone           string
	SynthesizeDOMMinor bool
	// OutputDir - каталог для JSON-выгрузки запуска, пусто - не писать
	OutputDir string
}
