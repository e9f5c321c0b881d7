package internal

// Config is the shared configuration of the maintenance binaries. The main
// engine binary has its own config with sweep settings; the viewer only
// needs to find the stores.
type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	InspectPort    int    `env:"INSPECT_PORT,default=8090"`
}
